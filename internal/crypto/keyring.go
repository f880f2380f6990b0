package crypto

// Keyring stores the database encryption key
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	IsAvailable() bool
}

const (
	ServiceName = "invoicer"
	KeyName     = "db-encryption-key"

	// EnvKey is read on platforms without a system keychain
	EnvKey = "INVOICER_DB_KEY"
)

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	return newPlatformKeyring()
}

package bootstrap

// Default system admin credentials, used when no overrides are configured.
// The password must be changed after first login.
const (
	DefaultAdminEmail    = "admin@inspect.com"
	DefaultAdminName     = "System Administrator"
	DefaultAdminPhone    = "+1234567890"
	DefaultAdminPassword = "Admin@123456"
)

// Config holds the identity of the system admin to seed
type Config struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// withDefaults fills empty fields from the Default* constants
func (c Config) withDefaults() Config {
	if c.Email == "" {
		c.Email = DefaultAdminEmail
	}
	if c.Name == "" {
		c.Name = DefaultAdminName
	}
	if c.Phone == "" {
		c.Phone = DefaultAdminPhone
	}
	if c.Password == "" {
		c.Password = DefaultAdminPassword
	}
	return c
}

// Result describes the outcome of EnsureSystemAdmin
type Result struct {
	Email   string
	Created bool // False when a system admin already existed
}

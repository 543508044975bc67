package bindery

import (
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads the given env files (".env" when none are named) and
// registers every variable as a literal string binding under its own
// name. Autowired constructors then pick the values up through the
// parameter-name scalar rule:
//
//	// .env: DB_DSN=postgres://localhost/app
//	c.LoadEnv()
//	reg.AddConstructor("*app.Database", NewDatabase, "DB_DSN")
//
// Values always bind as strings; convert in the constructor or register a
// typed binding over the same name to override one variable.
func (c *Container) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	vars, err := godotenv.Read(files...)
	if err != nil {
		return ContainerError{
			Op:     "load-env",
			Target: strings.Join(files, ", "),
			Cause:  err,
		}
	}

	for key, value := range vars {
		if err := c.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

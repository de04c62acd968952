package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	DBType     string `env:"DB_TYPE" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DB_USER" envDefault:""`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBAddr     string `env:"DB_ADDR" envDefault:""`
	DBName     string `env:"DB_NAME" envDefault:"accounts"`
	DBPath     string `env:"DB_PATH" envDefault:"datas/accounts.db"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	JWTSecret         string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer         string `env:"JWT_ISSUER" envDefault:"accounts"`
	JWTExpirationDays int    `env:"JWT_EXPIRATION_DAYS" envDefault:"90"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	TokenCookieName string `env:"TOKEN_COOKIE_NAME" envDefault:"jwt"`

	// Optional bootstrap admin account, created at startup when no user
	// with AdminEmail exists. Both fields must be set to take effect.
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:""`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:""`
}

// IsProduction reports whether the process runs with production settings,
// which controls the Secure flag on the token cookie.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func ParseConfig() (Config, error) {
	var conf Config
	err := env.Parse(&conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	logrus.Debugf("%#v\n", conf)
	return conf, nil
}

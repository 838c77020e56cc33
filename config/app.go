package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	RedisAddr   string `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass   string `env:"REDIS_PASSWORD"`
	AmqpURL     string `env:"AMQP_URL"`
	MailAPIURL  string `env:"MAIL_API_URL"`
	MailAPIKey  string `env:"MAIL_API_KEY"`
	MailFrom    string `env:"MAIL_FROM" default:"no-reply@stayin.local"`
	Env         string `env:"APP_ENV" default:"dev"`
}

// gymnast-crm/config/auth.go
package config

import (
	"log/slog"
	"os"
)

// JwtKey — ключ подписи JWT-токенов, общий для логина и middleware.
var JwtKey []byte

func LoadAuthKey() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("Критическая ошибка: переменная окружения JWT_SECRET не установлена.")
		os.Exit(1)
	}
	JwtKey = []byte(secret)
}

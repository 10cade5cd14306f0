package internal

import (
	"hikesoc/access-api/internal/service"
	"hikesoc/access-api/internal/store"

	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Tokens   *store.TokenStore
	QRTokens *store.QRStore
	Requests *store.RequestStore
	Issuer   *service.Issuer
	Logger   *service.AccessLogger
	Config   *service.ConfigGateway
}

package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users          *UserRepository
	Complexes      *ComplexRepository
	Buildings      *BuildingRepository
	MenuConfigs    *MenuConfigRepository
	QRCodes        *QRRepository
	News           *NewsRepository
	Ads            *AdRepository
	Customizations *CustomizationRepository
	Audit          *AuditRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(pool),
		Complexes:      NewComplexRepository(pool),
		Buildings:      NewBuildingRepository(pool),
		MenuConfigs:    NewMenuConfigRepository(pool),
		QRCodes:        NewQRRepository(pool),
		News:           NewNewsRepository(pool),
		Ads:            NewAdRepository(pool),
		Customizations: NewCustomizationRepository(pool),
		Audit:          NewAuditRepository(pool),
	}
}

package bootstrap

import (
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/chaussup/shop/internal/hash"
	"github.com/chaussup/shop/internal/models"
)

// Run prepares the store for serving: schema, admin account, demo catalog.
// It is invoked on every startup, so each step tolerates already-done state
// and a failure in one step never blocks the following ones. Only an
// unusable store handle is returned as an error.
func Run(db *gorm.DB, log *slog.Logger, adminUsername, adminPassword string) error {
	if db == nil {
		return errors.New("bootstrap: nil database handle")
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Session{}); err != nil {
		log.Error("schema migration failed", "error", err)
	} else {
		log.Info("schema ensured")
	}

	if err := ensureAdmin(db, log, adminUsername, adminPassword); err != nil {
		log.Error("admin bootstrap failed", "error", err)
	}

	if err := seedProducts(db, log); err != nil {
		log.Error("catalog seeding failed", "error", err)
	}

	return nil
}

func ensureAdmin(db *gorm.DB, log *slog.Logger, username, password string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", username).First(&existing).Error
		if err == nil {
			log.Info("admin user already exists", "username", username)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := hash.HashPassword(password)
		if err != nil {
			return err
		}

		admin := models.User{Username: username, PasswordHash: hashed}
		if err := tx.Create(&admin).Error; err != nil {
			// A concurrent startup may have won the insert; the unique
			// constraint rejecting ours is the same already-exists outcome.
			if isUniqueViolation(err) {
				log.Info("admin user already exists", "username", username)
				return nil
			}
			return err
		}

		log.Info("admin user created", "username", username)
		return nil
	})
}

func seedProducts(db *gorm.DB, log *slog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Info("products already exist, skipping seed", "count", count)
			return nil
		}

		catalog := demoCatalog()
		if err := tx.Create(&catalog).Error; err != nil {
			return err
		}

		log.Info("demo catalog seeded", "count", len(catalog))
		return nil
	})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func demoCatalog() []models.Product {
	return []models.Product{
		{
			Name:        "Duo Asymétrique Forêt",
			Description: "Une chaussette verte sapin, une marron écorce. L'économie circulaire commence dans votre tiroir !",
			Price:       12.90,
			ImageURL:    "/static/images/duo_forest.png",
		},
		{
			Name:        "Pack Rebelle Arc-en-ciel",
			Description: "7 couleurs, 0 paires identiques. Parce que la conformité c'est ringard.",
			Price:       24.90,
			ImageURL:    "/static/images/rebel_pack.jpg",
		},
		{
			Name:        "Edition Limitée Océan",
			Description: "Bleu marine + turquoise recyclé. Sauvez les mers, un pied à la fois.",
			Price:       15.90,
			ImageURL:    "/static/images/ocean_limited.jpg",
		},
		{
			Name:        "Classics Dépareillés Noir & Blanc",
			Description: "L'intemporel revisité. Élégance asymétrique garantie.",
			Price:       11.90,
			ImageURL:    "/static/images/black_white.jpg",
		},
	}
}

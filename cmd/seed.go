package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"chemstore/internal/config"
	"chemstore/internal/database"
	"chemstore/internal/models"
	"chemstore/internal/notify"
	"chemstore/internal/repositories"
	"chemstore/internal/services"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var seedAdmin services.RegisterInput

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample chemicals and optionally an admin account",
	Long: `Seed inserts a small sample catalog. Products whose CAS number already
exists are skipped, so running it twice is harmless. With --admin-email and
--admin-password an admin account is registered as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		store := repositories.NewGORMStore(db)
		added, err := seedCatalog(cmd.Context(), store.Products())
		if err != nil {
			return err
		}
		log.Printf("Seeded %d products", added)

		if seedAdmin.Email == "" {
			return nil
		}
		return seedAdminAccount(cmd.Context(), newAuthService(cfg, store, notify.LogMailer{}), seedAdmin)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdmin.Email, "admin-email", "", "email of an admin account to create")
	seedCmd.Flags().StringVar(&seedAdmin.Password, "admin-password", "", "password of the admin account")
	seedCmd.Flags().StringVar(&seedAdmin.Name, "admin-name", "Store Admin", "name of the admin account")
	seedCmd.Flags().StringVar(&seedAdmin.PhoneNo, "admin-phone", "0000000000", "phone number of the admin account")
	seedCmd.Flags().StringVar(&seedAdmin.Institution, "admin-institution", "ChemStore", "institution of the admin account")
	rootCmd.AddCommand(seedCmd)
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			Name: "Sodium Chloride", Formula: "NaCl", CASNumber: "7647-14-5", Category: "Inorganic Salts",
			Price: 850, Quantity: "500 g", Purity: "99.5%", MolecularWeight: 58.44,
			Description: "Analytical reagent grade sodium chloride.",
			Hazards:     []string{"Eye irritant"}, InStock: true, StockLevel: 40,
		},
		{
			Name: "Acetone", Formula: "C3H6O", CASNumber: "67-64-1", Category: "Solvents",
			Price: 1200, Quantity: "1 L", Purity: "99.8%", MolecularWeight: 58.08,
			Description: "HPLC grade acetone.",
			Hazards:     []string{"Highly flammable", "Eye irritant"}, InStock: true, StockLevel: 25,
		},
		{
			Name: "Sulfuric Acid", Formula: "H2SO4", CASNumber: "7664-93-9", Category: "Acids",
			Price: 1550, Quantity: "2.5 L", Purity: "98%", MolecularWeight: 98.08,
			Description: "Concentrated sulfuric acid, ACS reagent.",
			Hazards:     []string{"Corrosive"}, InStock: true, StockLevel: 12,
		},
		{
			Name: "Potassium Permanganate", Formula: "KMnO4", CASNumber: "7722-64-7", Category: "Oxidizers",
			Price: 2100, Quantity: "250 g", Purity: "99%", MolecularWeight: 158.03,
			Description: "Crystalline potassium permanganate.",
			Hazards:     []string{"Oxidizer", "Harmful if swallowed", "Toxic to aquatic life"}, InStock: false, StockLevel: 0,
		},
	}
}

// seedCatalog inserts the sample products missing from repo and reports how
// many were added.
func seedCatalog(ctx context.Context, repo repositories.ProductRepository) (int, error) {
	added := 0
	for _, p := range sampleProducts() {
		p := p
		_, err := repo.GetByCASNumber(ctx, p.CASNumber)
		if err == nil {
			log.Printf("Skipping %s: CAS %s already exists", p.Name, p.CASNumber)
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return added, err
		}
		if err := repo.Create(ctx, &p); err != nil {
			return added, fmt.Errorf("error seeding product %s: %w", p.Name, err)
		}
		log.Printf("Seeded product: %s (ID: %s)", p.Name, p.ID)
		added++
	}
	return added, nil
}

// seedAdminAccount registers in, or reuses an existing account with the same
// email, and grants it the admin role.
func seedAdminAccount(ctx context.Context, auth *services.AuthService, in services.RegisterInput) error {
	if _, err := auth.Register(ctx, in); err != nil && services.KindOf(err) != services.KindConflict {
		return err
	}
	_, err := auth.SetRole(ctx, in.Email, models.RoleAdmin)
	return err
}

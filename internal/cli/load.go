package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elguarir/gitex-assistant/internal/domain"
	exhibitorrepo "github.com/elguarir/gitex-assistant/internal/repository/exhibitor"
)

var loadChunkSize int

var loadCmd = &cobra.Command{
	Use:   "load <file.json>",
	Short: "Ingest exhibitor profiles from a JSON export",
	Long: `Load reads an exhibitor JSON export and writes each profile to the
store. Entries without a name are skipped; existing profiles with the
same id are overwritten. Run "gitexctl reconcile" afterwards to embed
the new profiles.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&loadChunkSize, "chunk-size", 100, "exhibitors per write pipeline")
	rootCmd.AddCommand(loadCmd)
}

// exhibitorJSON mirrors one entry of the exhibitor export file.
type exhibitorJSON struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StandNumber string            `json:"stand_number"`
	Country     string            `json:"country"`
	LogoURL     string            `json:"logo_url"`
	ProfileURL  string            `json:"profile_url"`
	Products    []domain.Product  `json:"products"`
	SocialLinks map[string]string `json:"social_links"`
}

func runLoad(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	var entries []exhibitorJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse export: %w", err)
	}
	fmt.Printf("Found %d entries in %s\n", len(entries), filepath.Base(path))

	exhibitors := make([]domain.Exhibitor, 0, len(entries))
	skipped := 0
	nextID := int64(1)
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			skipped++
			continue
		}
		id := e.ID
		if id == 0 {
			// exports without ids get sequential ones, mirroring the
			// serial column the data originally lived in
			id = nextID
		}
		if id >= nextID {
			nextID = id + 1
		}
		ex := domain.Exhibitor{
			ID:          id,
			Name:        e.Name,
			Description: e.Description,
			StandNumber: e.StandNumber,
			Country:     e.Country,
			LogoURL:     e.LogoURL,
			ProfileURL:  e.ProfileURL,
			Products:    e.Products,
			SocialLinks: e.SocialLinks,
		}
		ex.Normalize()
		exhibitors = append(exhibitors, ex)
	}
	if skipped > 0 {
		fmt.Printf("Skipped %d entries without a name\n", skipped)
	}
	if len(exhibitors) == 0 {
		return fmt.Errorf("no loadable exhibitors in %s", path)
	}

	ctx := cmd.Context()
	store, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := exhibitorrepo.New(store)

	bar := progressbar.Default(int64(len(exhibitors)), "loading exhibitors")
	for start := 0; start < len(exhibitors); start += loadChunkSize {
		end := min(start+loadChunkSize, len(exhibitors))
		if err := repo.BulkPut(ctx, exhibitors[start:end]); err != nil {
			return fmt.Errorf("write exhibitors [%d:%d]: %w", start, end, err)
		}
		_ = bar.Add(end - start)
	}
	_ = bar.Finish()

	logger.Info("Exhibitors loaded",
		zap.Int("loaded", len(exhibitors)),
		zap.Int("skipped", skipped),
	)
	fmt.Printf("Loaded %d exhibitors\n", len(exhibitors))
	return nil
}

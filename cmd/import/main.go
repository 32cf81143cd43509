// import reproduce un export CSV del sistema anterior a través del libro, de modo que
// cada saldo importado queda consistente con sus compras y pagos.
//
// Uso: go run ./cmd/import --file fiado.csv [--encoding windows-1256] [--dry-run]
//
// Cabecera: type,customer,date,amount,items
//   - type: purchase | payment
//   - date: RFC3339, "2006-01-02 15:04:05" o "2006-01-02"
//   - items (compras): "nombre:precio|nombre:precio"; vacío = una línea con amount
//
// El almacén se elige con las mismas variables que la API (DB_DRIVER, DATABASE_URL, SQLITE_PATH).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/storage"
	"github.com/jhoicas/Fiado-api/pkg/config"
	"github.com/jhoicas/Fiado-api/pkg/logger"
)

func main() {
	file := pflag.StringP("file", "f", "", "ruta del CSV a importar")
	encoding := pflag.String("encoding", "utf-8", "codificación del archivo: utf-8 | windows-1256")
	dryRun := pflag.Bool("dry-run", false, "solo valida el archivo, no escribe")
	pflag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "--file es requerido")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import"})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	in, err := decodeInput(f, *encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("codificación")
	}
	records, err := readRecords(in)
	if err != nil {
		log.Fatal().Err(err).Msg("CSV inválido")
	}
	log.Info().Int("rows", len(records)).Str("file", *file).Msg("archivo validado")
	if *dryRun {
		return
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	uc := ledger.NewLedgerUseCase(store.Tx, store.Customers, store.Purchases, store.Payments, ledger.Config{
		AllowCredit: cfg.Ledger.AllowCredit,
		Logger:      log.Zerolog(),
	})

	s := replay(ctx, uc, records, log.Component("import"))
	log.Info().Int("purchases", s.Purchases).Int("payments", s.Payments).Int("failed", s.Failed).Msg("importación terminada")
	if s.Failed > 0 {
		store.Close()
		os.Exit(1)
	}
}

// Command slotdump prints every record slot of one device.
//
//	STORE_BACKEND=redis REDIS_ADDR=localhost:6379 go run ./cmd/slotdump [device-id]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"quickfirstaid/common/logger"
	"quickfirstaid/internal/config"
	"quickfirstaid/internal/repository"
	"quickfirstaid/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log, err := logger.NewLogger("warn", "console", "slotdump")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := store.Open(ctx, store.OpenOptions{
		Backend:  cfg.Store.Backend,
		Dir:      cfg.Store.Dir,
		Redis:    &cfg.Redis,
		Database: &cfg.Database,
	})
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer backend.Close()

	override := cfg.DeviceID
	if len(os.Args) > 1 {
		override = os.Args[1]
	}
	deviceID, err := store.LookupDeviceID(ctx, backend.KV, cfg.Store.KeyPrefix, override)
	if errors.Is(err, store.ErrNoDeviceID) {
		fmt.Fprintf(os.Stderr, "No device id stored under %s:device_id; pass one as the first argument or set DEVICE_ID.\n", cfg.Store.KeyPrefix)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Failed to resolve device id", zap.Error(err))
	}

	fmt.Printf("Backend: %s\nDevice:  %s\n\n", backend.Name, deviceID)

	keys, err := backend.KV.ScanKeys(ctx, cfg.Store.KeyPrefix+":*")
	if err != nil {
		log.Fatal("Failed to list keys", zap.Error(err))
	}
	fmt.Printf("Keys under %s (%d):\n", cfg.Store.KeyPrefix, len(keys))
	for _, k := range keys {
		fmt.Printf("  %s\n", k)
	}
	fmt.Println()

	records := repository.NewRecordStore(backend.KV, cfg.Store.KeyPrefix, deviceID, log)

	rec, err := records.LoadMedicalID(ctx)
	if err != nil {
		log.Fatal("Failed to load medical id", zap.Error(err))
	}
	photo := rec.Photo
	rec.Photo = ""
	printJSON("Medical ID", rec)
	fmt.Printf("Photo: %s\n\n", describeBlob(photo))

	history, err := records.LoadScanHistory(ctx)
	if err != nil {
		log.Fatal("Failed to load scan history", zap.Error(err))
	}
	fmt.Printf("Scan history (%d/%d):\n", len(history), repository.MaxScanHistory)
	for i, e := range history {
		fmt.Printf("  %2d. id=%d date=%s type=%q status=%q image=%s\n",
			i+1, e.ID, e.Date, e.Result.String("type"), e.Result.String("status"), describeBlob(e.Base64))
	}
	fmt.Println()

	email, ok, err := records.GetSessionMarker(ctx)
	if err != nil {
		log.Fatal("Failed to read session marker", zap.Error(err))
	}
	if ok {
		fmt.Printf("Session marker: %s\n", email)
	} else {
		fmt.Println("Session marker: (none)")
	}
}

func printJSON(title string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%s: <%v>\n", title, err)
		return
	}
	fmt.Printf("%s:\n%s\n", title, b)
}

func describeBlob(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return fmt.Sprintf("%d bytes base64", len(s))
}

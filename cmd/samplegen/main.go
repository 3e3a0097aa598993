// Command samplegen writes demonstration customer files accepted by the
// upload endpoint, one spreadsheet and one CSV.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/CustomerUpload/internal/core"
	"github.com/JonMunkholm/CustomerUpload/internal/logging"
	"github.com/JonMunkholm/CustomerUpload/internal/samples"
)

func main() {
	dir := flag.String("dir", ".", "directory to write the sample files into")
	flag.Parse()

	_ = godotenv.Load()
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	customers := samples.Customers(time.Now())

	for _, out := range []struct {
		name  string
		write func(io.Writer, []core.Customer) error
	}{
		{samples.SpreadsheetName, samples.WriteXLSX},
		{samples.CSVName, samples.WriteCSV},
	} {
		path := filepath.Join(*dir, out.name)
		if err := writeFile(path, customers, out.write); err != nil {
			slog.Error("failed to write sample", "path", path, "error", err)
			os.Exit(1)
		}
		fmt.Printf("created %s\n", path)
	}
}

func writeFile(path string, customers []core.Customer, write func(io.Writer, []core.Customer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, customers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

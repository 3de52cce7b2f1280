package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/card-scanner/internal/cardscan"
	"github.com/zombor/card-scanner/internal/recognition"
	"github.com/zombor/card-scanner/internal/recognition/tesseract"
	"github.com/zombor/card-scanner/internal/scan"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("card-scanner")
	var (
		port            = fs.IntLong("port", 8080, "HTTP server port")
		dbPath          = fs.StringLong("db", "card-scanner.db", "Database file path")
		recognizerType  = fs.StringLong("recognizer", "tesseract", "Recognizer type: 'tesseract', 'gemini' or 'ollama'")
		geminiKey       = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel     = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL       = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel     = fs.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		tesseractLang   = fs.StringLong("tesseract-lang", "eng", "Comma separated Tesseract languages")
		tesseractConf   = fs.IntLong("tesseract-min-confidence", 30, "Drop Tesseract lines below this confidence (0-100)")
		authUser        = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass        = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		skipExpiry      = fs.BoolLong("skip-expiry", "Do not extract the expiry date")
		scanHolderName  = fs.BoolLong("scan-holder-name", "Extract the cardholder name")
		namePositions   = fs.StringLong("holder-name-positions", string(cardscan.BelowCardNumber), "Comma separated name positions: aboveCardNumber, belowCardNumber")
		maxNameLength   = fs.IntLong("max-holder-name-length", 26, "Maximum accepted cardholder name length")
		blacklist       = fs.StringLong("blacklist", "", "Comma separated extra values never accepted as a cardholder name")
		skipLuhn        = fs.BoolLong("skip-luhn", "Accept card numbers failing the Luhn check")
		allowPastExpiry = fs.BoolLong("allow-past-expiry", "Accept expiry dates in the past")
		debug           = fs.BoolLong("debug", "Log rejected candidates")
		imagePath       = fs.StringLong("image", "", "Scan this image file, print the card details as JSON and exit")
		showVersion     = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CARD_SCANNER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	positions, err := parseNamePositions(*namePositions)
	if err != nil {
		slog.Error("Invalid cardholder name positions", "error", err)
		os.Exit(1)
	}

	opts := cardscan.DefaultOptions()
	opts.ScanExpiryDate = !*skipExpiry
	opts.ScanCardHolderName = *scanHolderName
	opts.CardHolderNamePositions = positions
	opts.MaxCardHolderNameLength = *maxNameLength
	opts.CardHolderNameBlackListedWords = splitList(*blacklist)
	opts.EnableLuhnCheck = !*skipLuhn
	opts.ConsiderPastDatesInExpiryDateScan = *allowPastExpiry
	opts.EnableDebugLogs = *debug
	opts.Logger = slog.Default()
	frameScanner := cardscan.NewFrameScanner(opts)

	// Initialize recognizer based on type
	var recognizer recognition.Recognizer
	switch *recognizerType {
	case "tesseract":
		slog.Info("Initializing Tesseract recognizer...", "languages", *tesseractLang)
		recognizer = tesseract.New(float64(*tesseractConf), splitList(*tesseractLang)...)
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini recognizer...", "model", *geminiModel)
		recognizer, err = recognition.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama recognizer...", "url", *ollamaURL, "model", *ollamaModel)
		recognizer, err = recognition.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid recognizer type", "type", *recognizerType, "valid", "tesseract, gemini or ollama")
		os.Exit(1)
	}
	defer recognizer.Close()

	if *imagePath != "" {
		if err := scanFile(*imagePath, recognizer, frameScanner); err != nil {
			slog.Error("Failed to scan image", "path", *imagePath, "error", err)
			os.Exit(1)
		}
		return
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := scan.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	service := scan.NewService(db, recognizer, frameScanner)
	server := scan.NewServer(service, scan.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	})

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// scanFile runs a single image through the recognizer and scanner without
// touching the database
func scanFile(path string, recognizer recognition.Recognizer, frameScanner *cardscan.FrameScanner) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	frame, err := recognizer.Recognize(data, mime.TypeByExtension(strings.ToLower(filepath.Ext(path))))
	if err != nil {
		return fmt.Errorf("recognizing image: %w", err)
	}

	details, ok := frameScanner.ScanSingleFrame(frame)
	if !ok {
		return scan.ErrNoCardFound
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(details)
}

func parseNamePositions(s string) ([]cardscan.NamePosition, error) {
	var positions []cardscan.NamePosition
	for _, item := range splitList(s) {
		p, err := cardscan.ParseNamePosition(item)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

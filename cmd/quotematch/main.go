package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/core/extract"
	"github.com/joseph-ayodele/quotation-tracker/internal/core/match"
	"github.com/joseph-ayodele/quotation-tracker/internal/core/ocr"
	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
	"github.com/joseph-ayodele/quotation-tracker/internal/quotation"
)

// exitNoText is returned when the document decoded but carried no text.
const exitNoText = 5

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		itemsPath = flag.String("items", "", "purchase-order request JSON (required)")
		pdfPath   = flag.String("pdf", "", "supplier quote PDF (required)")
		asJSON    = flag.Bool("json", false, "print the parse result as JSON")
	)
	flag.Parse()

	if *itemsPath == "" || *pdfPath == "" {
		printError("usage: quotematch -items req.json -pdf quote.pdf [-json]\n")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	reqBytes, err := os.ReadFile(*itemsPath)
	if err != nil {
		printError("Error: reading %s: %v\n", *itemsPath, err)
		os.Exit(1)
	}
	req, err := quotation.DecodeRequest(reqBytes)
	if err != nil {
		printError("Error: %s\n", common.UserMessage(err))
		os.Exit(common.ExitCode(err))
	}
	doc, err := os.ReadFile(*pdfPath)
	if err != nil {
		printError("Error: reading %s: %v\n", *pdfPath, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext: cfg.Decoder.Pdftotext,
		MaxPages:  cfg.Decoder.MaxPages,
		TempDir:   cfg.Decoder.TempDir,
	}, logger)
	matcher := match.NewMatcher(extract.NewPDFAdapter(extractor, logger), logger)

	res, err := matcher.Parse(ctx, doc, req.Items)
	if err != nil {
		logger.Error("parse failed", "pdf", *pdfPath, "error", err)
		printError("Error: %s\n", common.UserMessage(err))
		os.Exit(common.ExitCode(err))
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		printResult(req.Items, res)
	}

	if !res.TextExtracted {
		printError("%s\n", common.MsgNoExtractableText)
		os.Exit(exitNoText)
	}
}

func printResult(items []entity.LineItem, res entity.DocumentParseResult) {
	byID := res.ByLineItem()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ITEM\tDESCRIPTION\tUNIT PRICE\tCONFIDENCE")
	for _, it := range items {
		r := byID[it.ID]
		price := "-"
		if r.Matched {
			price = "R$ " + match.FormatBRL(r.UnitPrice)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.Description, price, r.Confidence)
	}
	_ = w.Flush()

	fmt.Printf("\nMatched: %d/%d\n", res.MatchedCount(), len(items))
	if res.PaymentTerms != "" {
		fmt.Printf("Payment terms: %s\n", res.PaymentTerms)
	}
	if res.DeliveryTerm != "" {
		fmt.Printf("Delivery term: %s\n", res.DeliveryTerm)
	}
}

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	reportpkg "github.com/GurdipSCode/devops-mondoo-scanner/internal/report"
	"github.com/GurdipSCode/devops-mondoo-scanner/pkg/utils"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Generate HTML/PDF report from a run directory",
		Example: "fleetscan report --from ./work/vault --format html,pdf",
		RunE:    runReport,
	}

	cmd.Flags().String("from", "", "Run directory (must contain summary.json)")
	cmd.Flags().String("format", "html,pdf", "Output formats: html,pdf,json (json just points to summary.json)")

	_ = viper.BindPFlag("report.from", cmd.Flags().Lookup("from"))
	_ = viper.BindPFlag("report.format", cmd.Flags().Lookup("format"))
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	from := viper.GetString("report.from")
	if from == "" {
		return errors.New("please provide --from pointing to the run directory (with summary.json)")
	}

	formats := strings.Split(viper.GetString("report.format"), ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(strings.ToLower(formats[i]))
	}

	v, err := reportpkg.LoadVerdict(from)
	if err != nil {
		return err
	}
	htmlPath, err := reportpkg.GenerateHTML(v, from)
	if err != nil {
		return err
	}
	fmt.Printf("📝 HTML report: %s\n", htmlPath)

	// Optional PDF (chromedp-based)
	if contains(formats, "pdf") {
		pdfPath, err := reportpkg.GeneratePDF(cmd.Context(), htmlPath)
		if err != nil {
			fmt.Printf("⚠️  PDF generation failed: %v\n", err)
		} else {
			fmt.Printf("📄 PDF report:  %s\n", pdfPath)
		}
	}

	if contains(formats, "json") {
		fmt.Printf("📦 JSON already exists at: %s\n", filepath.Join(from, utils.SummaryFileName))
	}

	return nil
}

func contains(arr []string, v string) bool {
	for _, x := range arr {
		if x == v {
			return true
		}
	}
	return false
}

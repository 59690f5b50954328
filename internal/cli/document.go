package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askQuery string

var summarizeCmd = &cobra.Command{
	Use:   "summarize <document>",
	Short: "Summarize a document",
	Long: `Extract the text of a document and ask the completion model for a
summary of at most 200 words. The path is relative to documents.upload_dir.

Examples:
  semtiles summarize paper.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

var askCmd = &cobra.Command{
	Use:   "ask <document>",
	Short: "Answer a question about a document",
	Long: `Answer a free-form question using the document's text as context.

Examples:
  semtiles ask paper.pdf -q "What problem does this solve?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question about the document (required)")
	askCmd.MarkFlagRequired("query")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	svc, model := newDocumentService(GetConfig(), logger)

	summary, err := svc.Summarize(cmd.Context(), args[0])
	logCompletionUsage(logger, model)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	svc, model := newDocumentService(GetConfig(), logger)

	answer, err := svc.Answer(cmd.Context(), args[0], askQuery)
	logCompletionUsage(logger, model)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

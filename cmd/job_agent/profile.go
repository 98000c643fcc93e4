package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/observability"
	"github.com/jonathan/job-agent/internal/profile"
)

var profileCommand = &cobra.Command{
	Use:   "profile",
	Short: "Manage candidate profile versions",
}

var profileIntakeCommand = &cobra.Command{
	Use:   "intake",
	Short: "Create a new profile version from a resume",
	Long: `Extracts skills, experience and suggested titles from a resume text
file. Without --answers the clarifying preference questions are printed, to
be answered in a JSON file ({"question_key": "answer", ...}) and passed back
with --answers; the new version is then assembled and saved (unconfirmed).`,
	RunE: profileIntakeCmd,
}

var profileConfirmCommand = &cobra.Command{
	Use:   "confirm",
	Short: "Confirm a profile version for use in discovery cycles",
	RunE:  profileConfirmCmd,
}

var profileShowCommand = &cobra.Command{
	Use:   "show",
	Short: "Show the latest profile version",
	RunE:  profileShowCmd,
}

var (
	profileResumePath  string
	profileAnswersPath string
	profileVersionFlag int
)

func init() {
	profileIntakeCommand.Flags().StringVarP(&profileResumePath, "resume", "r", "", "Path to resume text file (required)")
	profileIntakeCommand.Flags().StringVarP(&profileAnswersPath, "answers", "a", "", "Path to JSON file with preference answers")
	_ = profileIntakeCommand.MarkFlagRequired("resume")

	profileConfirmCommand.Flags().IntVar(&profileVersionFlag, "version", 0, "Profile version to confirm (default: latest)")

	profileCommand.AddCommand(profileIntakeCommand)
	profileCommand.AddCommand(profileConfirmCommand)
	profileCommand.AddCommand(profileShowCommand)
	rootCmd.AddCommand(profileCommand)
}

func profileIntakeCmd(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	if a.llmClient == nil {
		return fmt.Errorf("profile intake needs the model collaborator; set GEMINI_API_KEY")
	}

	raw, err := os.ReadFile(profileResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	text, err := profile.PlainText{}.Extract(ctx, raw, profileResumePath)
	if err != nil {
		return err
	}

	extraction, err := a.intake.ExtractFromResume(ctx, text)
	if err != nil {
		return err
	}

	if profileAnswersPath == "" {
		questions, err := a.intake.ClarifyingQuestions(ctx, extraction)
		if err != nil {
			return err
		}
		fmt.Printf("Extracted %d skills, %.1f years of experience.\n\n", len(extraction.Skills), extraction.ExperienceYears)
		fmt.Println("Answer these in a JSON file and re-run with --answers:")
		for i, question := range questions {
			fmt.Printf("  %d. %s\n", i+1, question)
		}
		fmt.Println("\nRecognized keys: preferred_titles, preferred_locations (comma-separated); any other key is stored for form filling.")
		return nil
	}

	answersRaw, err := os.ReadFile(profileAnswersPath)
	if err != nil {
		return fmt.Errorf("failed to read answers: %w", err)
	}
	var answers map[string]string
	if err := json.Unmarshal(answersRaw, &answers); err != nil {
		return fmt.Errorf("failed to parse answers file: %w", err)
	}

	saved, err := a.intake.BuildVersion(ctx, a.cfg.UserID, extraction, answers)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintProfile(saved)
	fmt.Printf("Saved profile v%d (unconfirmed). Confirm with 'job_agent profile confirm'.\n", saved.Version)
	return nil
}

func profileConfirmCmd(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	version := profileVersionFlag
	if version == 0 {
		latest, err := a.profiles.Latest(ctx, a.cfg.UserID)
		if err != nil {
			return err
		}
		version = latest.Version
	}

	confirmed, err := a.profiles.Confirm(ctx, a.cfg.UserID, version)
	if err != nil {
		return err
	}
	fmt.Printf("Profile v%d confirmed.\n", confirmed.Version)
	return nil
}

func profileShowCmd(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	latest, err := a.profiles.Latest(ctx, a.cfg.UserID)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintProfile(latest)
	return nil
}

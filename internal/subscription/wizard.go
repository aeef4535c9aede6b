package subscription

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// RunWizard interactively collects a new subscription and writes it to dir
// as <identifier>.toml, returning the written path.
func RunWizard(dir string) (string, error) {
	var (
		term          string
		minimumLength string
		quality       = QualityMedium
		identifier    string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Term").
				Description("LIKE pattern matched against title and topic, e.g. %tatort%").
				Value(&term).
				Validate(notEmpty),
			huh.NewInput().
				Title("Minimum length (in seconds)").
				Value(&minimumLength).
				Validate(wholeNumber),
			huh.NewSelect[Quality]().
				Title("Preferred quality").
				Options(
					huh.NewOption("high", QualityHigh),
					huh.NewOption("medium", QualityMedium),
					huh.NewOption("low", QualityLow),
				).
				Value(&quality),
			huh.NewInput().
				Title("Identifier").
				Description("unique name, also used as the download folder").
				Value(&identifier).
				Validate(folderName),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}

	minLen, err := strconv.ParseInt(strings.TrimSpace(minimumLength), 10, 64)
	if err != nil {
		return "", err
	}

	return Save(dir, Subscription{
		Term:          term,
		MinimumLength: minLen,
		Quality:       quality,
		Identifier:    identifier,
	})
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func wholeNumber(s string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
		return errors.New("must be a whole number of seconds")
	}
	return nil
}

func folderName(s string) error {
	if err := notEmpty(s); err != nil {
		return err
	}
	if strings.ContainsAny(s, `/\`) {
		return errors.New("must not contain path separators")
	}
	return nil
}

package cli

import (
	"errors"
	"strings"

	"storyview/internal/model"
	"storyview/internal/store"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

type createFormValues struct {
	Kind    string
	URL     string
	Body    string
	Caption string
}

func (v createFormValues) newStory(authorID string) store.NewStory {
	in := store.NewStory{
		AuthorID: authorID,
		Media: model.Media{
			Kind: model.MediaKind(v.Kind),
			URL:  strings.TrimSpace(v.URL),
			Body: strings.TrimSpace(v.Body),
		},
	}
	if c := strings.TrimSpace(v.Caption); c != "" {
		in.Overlays = []model.Overlay{{Kind: model.OverlayKindText, Text: c, X: 10, Y: 85, Bold: true}}
	}
	return in
}

func requireNonEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(what + " is required")
		}
		return nil
	}
}

func newCreateForm(v *createFormValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What kind of story?").
				Options(
					huh.NewOption("Image", string(model.MediaKindImage)),
					huh.NewOption("Video", string(model.MediaKindVideo)),
					huh.NewOption("Text", string(model.MediaKindText)),
				).
				Value(&v.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("File path or URL").
				Value(&v.URL).
				Validate(requireNonEmpty("a path or URL")),
		).WithHideFunc(func() bool { return v.Kind == string(model.MediaKindText) }),
		huh.NewGroup(
			huh.NewText().
				Title("Text (markdown)").
				Value(&v.Body).
				Validate(requireNonEmpty("text")),
		).WithHideFunc(func() bool { return v.Kind != string(model.MediaKindText) }),
		huh.NewGroup(
			huh.NewInput().
				Title("Caption").
				Description("Optional, shown over the story").
				Value(&v.Caption),
		),
	)
}

func createInteractive(cmd *cobra.Command, app *App, st *store.Store, authorID string) (model.Story, error) {
	v := createFormValues{Kind: string(model.MediaKindImage)}
	form := newCreateForm(&v).
		WithInput(cmd.InOrStdin()).
		WithOutput(cmd.ErrOrStderr())
	if err := form.RunWithContext(cmd.Context()); err != nil {
		return model.Story{}, err
	}
	in := v.newStory(authorID)
	in.Media.URL = absMediaURL(in.Media.URL)
	in.CreatedAt = app.now()
	return st.CreateStory(cmd.Context(), in)
}

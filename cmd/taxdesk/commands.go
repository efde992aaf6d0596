package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"taxdesk/internal/client"
	"taxdesk/internal/controller"
	"taxdesk/internal/tui"
)

func newRootCmd(defaultURL string) *cobra.Command {
	var apiURL string

	root := &cobra.Command{
		Use:           "taxdesk",
		Short:         "Ask tax questions through the taxdesk server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "taxdesk server base URL")

	newClient := func() (*client.Client, error) {
		return client.New(apiURL)
	}

	root.AddCommand(newAskCommand(newClient))
	root.AddCommand(newPromptsCommand(newClient))
	root.AddCommand(newChatCommand(newClient))
	return root
}

type clientFactory func() (*client.Client, error)

func newAskCommand(newClient clientFactory) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Send one question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := newClient()
			if err != nil {
				return err
			}
			ctrl := controller.New(cl)
			question := strings.Join(args, " ")
			ctrl.SetPrompt(question)
			if !ctrl.Submit(cmd.Context(), question) {
				return errors.New("question is empty")
			}

			st := ctrl.State()
			if st.Error != "" {
				return errors.New(st.Error)
			}
			out := cmd.OutOrStdout()
			if !plain && isTerminal(out) {
				if rendered, err := glamour.Render(st.Response, "dark"); err == nil {
					_, err = io.WriteString(out, rendered)
					return err
				}
			}
			_, err = fmt.Fprintln(out, st.Response)
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the answer without markdown rendering")
	return cmd
}

func newPromptsCommand(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List example questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := newClient()
			if err != nil {
				return err
			}
			prompts, err := cl.Prompts(cmd.Context())
			if err != nil {
				return errors.New(controller.Describe(err))
			}
			for i, p := range prompts {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, p)
			}
			return nil
		},
	}
}

func newChatCommand(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive question form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := newClient()
			if err != nil {
				return err
			}
			// The catalogue is optional; the form works without it.
			catalogue, err := cl.Prompts(cmd.Context())
			if err != nil {
				log.Debug().Err(err).Msg("prompt catalogue unavailable")
			}
			renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(78))
			if err != nil {
				log.Debug().Err(err).Msg("markdown renderer unavailable")
				renderer = nil
			}
			m := tui.NewModel(cmd.Context(), controller.New(cl), catalogue, renderer)
			return tui.Run(cmd.Context(), m)
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nadzzz/speakgenie/internal/audio"
	"github.com/nadzzz/speakgenie/internal/speech"
	"github.com/nadzzz/speakgenie/internal/speech/synth"
)

var (
	sayLang   string
	sayRate   float64
	sayPitch  float64
	sayVolume float64

	sayCmd = &cobra.Command{
		Use:   "say [text]",
		Short: "Speak text on this machine's speaker",
		Long: "Speak text in a practice language, walking the same voice fallback\n" +
			"chain the tutor uses for its replies.",
		Args: cobra.MinimumNArgs(1),
		RunE: runSay,
	}

	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List installed voices and the voice each language resolves to",
		Args:  cobra.NoArgs,
		RunE:  runVoices,
	}

	languagesCmd = &cobra.Command{
		Use:   "languages",
		Short: "List practice languages",
		Args:  cobra.NoArgs,
		RunE:  runLanguages,
	}
)

func init() {
	sayCmd.Flags().StringVarP(&sayLang, "lang", "l", "en", "language id or locale tag (e.g. hi, mr-IN)")
	sayCmd.Flags().Float64Var(&sayRate, "rate", 0, "speaking rate (default from config)")
	sayCmd.Flags().Float64Var(&sayPitch, "pitch", 0, "voice pitch (default from config)")
	sayCmd.Flags().Float64Var(&sayVolume, "volume", 0, "volume 0.0-1.0 (default from config)")
}

func runSay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	langs, err := newLanguages(cfg)
	if err != nil {
		return err
	}
	lang, ok := langs.Lookup(sayLang)
	if !ok {
		return fmt.Errorf("unknown language %q", sayLang)
	}

	synthesizer, catalog, err := newSpeech(cfg)
	if err != nil {
		return err
	}
	if synthesizer == nil {
		return errors.New("text-to-speech is disabled in config")
	}
	defer synthesizer.Close()
	catalog.Refresh(ctx)

	p := speechParams(cfg.Speech)
	if cmd.Flags().Changed("rate") {
		p.Rate = sayRate
	}
	if cmd.Flags().Changed("pitch") {
		p.Pitch = sayPitch
	}
	if cmd.Flags().Changed("volume") {
		p.Volume = sayVolume
	}

	ctrl := speech.NewController(synth.New(synthesizer, audio.NewSpeaker()), catalog,
		speech.WithFailureHook(func(req *speech.Request, err error) {
			slog.Warn("could not speak", "locale", req.Locale, "error", err)
		}))
	defer ctrl.Stop()

	req := ctrl.Speak(strings.Join(args, " "), lang.Locale, p)
	if req == nil {
		return errors.New("nothing to say")
	}
	res, err := req.Wait(ctx)
	if err != nil {
		return err
	}

	voiceID := "platform default"
	if res.Voice != nil {
		voiceID = res.Voice.ID
	}
	fmt.Fprintf(cmd.OutOrStdout(), "spoke %s with %s (%s, %d attempt(s))\n", res.Locale, voiceID, res.Tier, res.Attempts)
	return nil
}

func runVoices(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	synthesizer, catalog, err := newSpeech(cfg)
	if err != nil {
		return err
	}
	if synthesizer == nil {
		return errors.New("text-to-speech is disabled in config")
	}
	defer synthesizer.Close()

	voices, err := synthesizer.Voices(ctx)
	if err != nil {
		return err
	}
	catalog.Replace(voices)

	langs, err := newLanguages(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VOICE\tNAME\tLOCALE")
	for _, v := range voices {
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.ID, v.Name, v.Locale)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "LANGUAGE\tLOCALE\tFALLBACK CHAIN")
	for _, l := range langs.All() {
		chain := speech.BuildChain(catalog, l.Locale)
		steps := make([]string, 0, len(chain))
		for _, c := range chain {
			id := "default"
			if c.Voice != nil {
				id = c.Voice.ID
			}
			steps = append(steps, fmt.Sprintf("%s@%s (%s)", id, c.Locale, c.Tier))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.Name, l.Locale, strings.Join(steps, " -> "))
	}
	return w.Flush()
}

func runLanguages(cmd *cobra.Command, _ []string) error {
	langs, err := newLanguages(cfg)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLOCALE\tNAME\tNATIVE")
	for _, l := range langs.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.Locale, l.Name, l.NativeName)
	}
	return w.Flush()
}

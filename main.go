package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/fasalvikas/fasal-vikas/internal/advisory"
	"github.com/fasalvikas/fasal-vikas/internal/api"
	"github.com/fasalvikas/fasal-vikas/internal/catalog"
	"github.com/fasalvikas/fasal-vikas/internal/config"
	"github.com/fasalvikas/fasal-vikas/internal/features"
	"github.com/fasalvikas/fasal-vikas/internal/i18n"
	"github.com/fasalvikas/fasal-vikas/internal/inference"
	"github.com/fasalvikas/fasal-vikas/internal/logging"
	"github.com/fasalvikas/fasal-vikas/internal/models"
	"github.com/fasalvikas/fasal-vikas/internal/nn"
	"github.com/fasalvikas/fasal-vikas/internal/server"
	"github.com/fasalvikas/fasal-vikas/internal/validation"
)

var version = "dev"

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "fasal-vikas",
		Usage:   "Crop yield prediction and farming advice",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{config.ConfigPathEnvVar},
			},
			&cli.StringFlag{
				Name:  "models-dir",
				Usage: "Directory containing the model artifacts",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			serveCommand(),
			predictCommand(),
			recommendCommand(),
			registriesCommand(),
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "Fasal Vikas v%s\n", version)
					return nil
				},
			},
		},
	}
}

// loadConfig reads the config file and environment, then applies flags
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.Version = version

	if c.IsSet("models-dir") {
		cfg.Models.Dir = c.String("models-dir")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP server port",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logging.Info().Str("version", version).Str("models_dir", cfg.Models.Dir).Msg("Fasal Vikas starting")

	srv, err := server.New(*cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = srv.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
		if err := srv.Stop(); err != nil {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}
	return nil
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Predict crop yield and print localized advice",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "state", Required: true, Usage: "State name"},
			&cli.StringFlag{Name: "crop", Required: true, Usage: "Crop name"},
			&cli.StringFlag{Name: "season", Required: true, Usage: "Growing season"},
			&cli.Float64Flag{Name: "ph", Required: true, Usage: "Soil pH"},
			&cli.Float64Flag{Name: "rainfall", Required: true, Usage: "Rainfall in mm"},
			&cli.Float64Flag{Name: "temperature", Required: true, Usage: "Temperature in degrees Celsius"},
			&cli.Float64Flag{Name: "area", Required: true, Usage: "Cultivated area in hectares"},
			&cli.Float64Flag{Name: "production", Required: true, Usage: "Production in tons"},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Response language code"},
			&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
		},
		Action: predict,
	}
}

func predict(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	req := models.YieldRequest{
		State:       c.String("state"),
		Crop:        c.String("crop"),
		Season:      c.String("season"),
		PH:          c.Float64("ph"),
		Rainfall:    c.Float64("rainfall"),
		Temperature: c.Float64("temperature"),
		Area:        c.Float64("area"),
		Production:  c.Float64("production"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return verr
	}

	model, err := nn.LoadYieldRegressor(cfg.Models.YieldPath())
	if err != nil {
		return err
	}
	encoder := features.DefaultEncoder()
	dispatcher, err := inference.NewYieldDispatcher(model, encoder)
	if err != nil {
		return err
	}
	localizer, err := server.NewLocalizer(cfg.I18n)
	if err != nil {
		return err
	}

	vec, err := encoder.Encode(req.FeatureInput())
	if err != nil {
		return err
	}
	ctx := context.Background()
	predicted, err := dispatcher.Predict(ctx, vec)
	if err != nil {
		return err
	}

	crop, _ := catalog.Crops.Canonical(req.Crop)
	season, _ := catalog.Seasons.Canonical(req.Season)
	advice := advisory.Generate(advisory.Input{
		Crop:           crop,
		Season:         season,
		Area:           req.Area,
		PH:             req.PH,
		Rainfall:       req.Rainfall,
		Temperature:    req.Temperature,
		Production:     req.Production,
		PredictedYield: predicted,
	})

	lang := i18n.ResolveLanguage(c.String("lang"), "")
	if !c.IsSet("lang") && i18n.Supported(cfg.I18n.Default) {
		lang = cfg.I18n.Default
	}

	display := api.FormatYield(predicted)
	resp := models.YieldResponse{
		Language:              lang,
		PredictedYield:        predicted,
		PredictedYieldDisplay: display,
		Unit:                  api.YieldUnit,
		Message:               localizer.Localize(ctx, lang, i18n.UI(i18n.MsgPredictedYield, display)),
		RecommendationsTitle:  localizer.Localize(ctx, lang, i18n.UI(i18n.MsgRecsTitle)),
		Recommendations:       localizer.LocalizeAll(ctx, lang, advice),
	}
	for _, m := range advice {
		resp.RecommendationIDs = append(resp.RecommendationIDs, m.ID)
	}

	if c.Bool("json") {
		return printJSON(c, resp)
	}

	out := c.App.Writer
	fmt.Fprintln(out, resp.Message)
	fmt.Fprintln(out)
	fmt.Fprintln(out, resp.RecommendationsTitle)
	for _, r := range resp.Recommendations {
		fmt.Fprintf(out, "  - %s\n", r)
	}
	return nil
}

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Recommend a crop from soil nutrients and weather",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "n", Required: true, Usage: "Nitrogen content"},
			&cli.Float64Flag{Name: "p", Required: true, Usage: "Phosphorus content"},
			&cli.Float64Flag{Name: "k", Required: true, Usage: "Potassium content"},
			&cli.Float64Flag{Name: "ph", Usage: "Soil pH"},
			&cli.Float64Flag{Name: "temperature", Usage: "Temperature in degrees Celsius"},
			&cli.Float64Flag{Name: "humidity", Usage: "Relative humidity in percent"},
			&cli.Float64Flag{Name: "rainfall", Usage: "Rainfall in mm"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			req := models.CropRequest{
				N:           c.Float64("n"),
				P:           c.Float64("p"),
				K:           c.Float64("k"),
				PH:          c.Float64("ph"),
				Temperature: c.Float64("temperature"),
				Humidity:    c.Float64("humidity"),
				Rainfall:    c.Float64("rainfall"),
			}
			if verr := validation.ValidateStruct(&req); verr != nil {
				return verr
			}

			model, err := nn.LoadCropClassifier(cfg.Models.CropPath())
			if err != nil {
				return err
			}
			crop, err := model.Classify(req.Vector())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, i18n.UI(i18n.MsgRecommendedCrop, crop).Text())
			return nil
		},
	}
}

func registriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "registries",
		Usage: "List the accepted states, crops and seasons",
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			for _, r := range []*catalog.Registry{catalog.States, catalog.Crops, catalog.Seasons} {
				fmt.Fprintf(out, "%s (%d, reference %s):\n", r.Name(), r.Len(), r.Reference())
				fmt.Fprintf(out, "  %s\n", strings.Join(r.Labels(), ", "))
			}
			return nil
		},
	}
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

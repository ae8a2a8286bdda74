package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/nutribot/internal/profile"
	"github.com/hrygo/nutribot/server"
	"github.com/hrygo/nutribot/store"
	"github.com/hrygo/nutribot/store/db"
)

const version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "nutribot",
		Short: `NutriBot is a meal and diet planning chat backend.`,
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := loadProfile()

			ctx, cancel := context.WithCancel(context.Background())
			storeInstance, err := openStore(ctx, instanceProfile)
			if err != nil {
				cancel()
				slog.Error("failed to open store", "error", err)
				os.Exit(1)
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				cancel()
				slog.Error("failed to create server", "error", err)
				os.Exit(1)
			}

			c := make(chan os.Signal, 1)
			// Trigger graceful shutdown on SIGINT or SIGTERM.
			// The default signal sent by the `kill` command is SIGTERM,
			// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)

			if err := s.Start(ctx); err != nil {
				cancel()
				slog.Error("failed to start server", "error", err)
				os.Exit(1)
			}

			printGreetings(instanceProfile)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			// Wait for CTRL-C.
			<-ctx.Done()
		},
	}

	indexCmd = &cobra.Command{
		Use:   "index-embeddings",
		Short: "Compute food embeddings for vector food search",
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile := loadProfile()
			ctx := cmd.Context()
			storeInstance, err := openStore(ctx, instanceProfile)
			if err != nil {
				return err
			}
			defer storeInstance.Close()

			n, err := indexEmbeddings(ctx, instanceProfile, storeInstance)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d foods\n", n)
			return nil
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("jwt-secret", "", "secret for signing access tokens")
	rootCmd.PersistentFlags().String("cors-origins", "", "comma separated list of allowed CORS origins")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "jwt-secret", "cors-origins"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("nutribot")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(indexCmd)
}

func loadProfile() *profile.Profile {
	instanceProfile := &profile.Profile{
		Mode:        viper.GetString("mode"),
		Addr:        viper.GetString("addr"),
		Port:        viper.GetInt("port"),
		Data:        viper.GetString("data"),
		Driver:      viper.GetString("driver"),
		DSN:         viper.GetString("dsn"),
		JWTSecret:   viper.GetString("jwt-secret"),
		CORSOrigins: viper.GetString("cors-origins"),
		Version:     version,
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		slog.Error("invalid profile", "error", err)
		os.Exit(1)
	}
	return instanceProfile
}

func openStore(ctx context.Context, instanceProfile *profile.Profile) (*store.Store, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, err
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		storeInstance.Close()
		return nil, err
	}
	return storeInstance, nil
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("NutriBot %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	// Server information
	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Default model: %s\n", profile.DefaultModel)
	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
		fmt.Printf("Access your NutriBot API at: http://localhost:%d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
		fmt.Printf("Access your NutriBot API at: http://%s:%d\n", profile.Addr, profile.Port)
	}
}

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

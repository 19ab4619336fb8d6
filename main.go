package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"hermannm.dev/devlog"
	"hermannm.dev/devlog/log"
	"hermannm.dev/gridsearch/api"
	"hermannm.dev/gridsearch/config"
	"hermannm.dev/gridsearch/datasource"
	"hermannm.dev/gridsearch/elastic"
	"hermannm.dev/gridsearch/fields"
	"hermannm.dev/gridsearch/query"
	"hermannm.dev/wrap"
)

func main() {
	logHandler := devlog.NewHandler(os.Stdout, &devlog.Options{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(logHandler))

	if err := newRootCommand().Execute(); err != nil {
		log.ErrorCause(err, "command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "gridsearch",
		Short:         "Serves paging grid requests from a search engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		if verbose {
			logHandler := devlog.NewHandler(os.Stdout, &devlog.Options{Level: slog.LevelDebug})
			slog.SetDefault(slog.New(logHandler))
		}
	}

	root.AddCommand(newServeCommand(), newCompileCommand(), newFieldsCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve grid requests over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			log.Info("Loading environment variables...")
			conf, err := config.ReadFromEnv()
			if err != nil {
				return wrap.Error(err, "failed to read config from env")
			}

			model, err := config.ReadModel(conf.Query.FieldsFile)
			if err != nil {
				return err
			}

			log.Info("Connecting to Elasticsearch...")
			client, err := elastic.NewClient(conf.Elasticsearch)
			if err != nil {
				return wrap.Error(err, "failed to initialize search client")
			}

			source, err := datasource.New(model, client, datasource.Options{
				Query: query.Options{MissingBooleanAsFalse: conf.Query.MissingBooleanAsFalse},
			})
			if err != nil {
				return wrap.Error(err, "failed to initialize data source")
			}

			gridAPI := api.NewGridAPI(source, http.NewServeMux(), api.Config{Port: conf.API.Port})

			log.Infof("Listening on port %s...", conf.API.Port)
			if err := gridAPI.ListenAndServe(); err != nil {
				return wrap.Error(err, "server stopped")
			}
			return nil
		},
	}
}

func newCompileCommand() *cobra.Command {
	var fieldsFile string
	var requestFile string
	var missingBooleanAsFalse bool

	command := &cobra.Command{
		Use:   "compile",
		Short: "Print the search body of a grid request",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			model, err := config.ReadModel(fieldsFile)
			if err != nil {
				return err
			}

			registry, err := fields.Build(model)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(requestFile)
			if err != nil {
				return wrap.Errorf(err, "failed to read grid request file '%s'", requestFile)
			}

			var request query.Request
			if err := json.Unmarshal(content, &request); err != nil {
				return wrap.Errorf(err, "invalid grid request in '%s'", requestFile)
			}

			compiler := query.NewCompiler(
				registry, query.Options{MissingBooleanAsFalse: missingBooleanAsFalse},
			)
			body, err := compiler.Compile(request)
			if err != nil {
				return wrap.Error(err, "failed to compile grid request")
			}

			return printJSON(command, body)
		},
	}

	command.Flags().StringVar(&fieldsFile, "fields", "", "JSON or YAML field model file")
	command.Flags().StringVar(&requestFile, "request", "", "JSON grid request file")
	command.Flags().BoolVar(
		&missingBooleanAsFalse, "missing-boolean-as-false", false,
		"treat missing boolean fields as false when filtering on false",
	)
	_ = command.MarkFlagRequired("fields")
	_ = command.MarkFlagRequired("request")

	return command
}

func newFieldsCommand() *cobra.Command {
	var modelFile string

	command := &cobra.Command{
		Use:   "fields",
		Short: "Print the fields derived from a field model",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			model, err := config.ReadModel(modelFile)
			if err != nil {
				return err
			}

			registry, err := fields.Build(model)
			if err != nil {
				return err
			}

			return printJSON(command, registry.All())
		},
	}

	command.Flags().StringVar(&modelFile, "model", "", "JSON or YAML field model file")
	_ = command.MarkFlagRequired("model")

	return command
}

func printJSON(command *cobra.Command, value any) error {
	encoder := json.NewEncoder(command.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return wrap.Error(err, "failed to write JSON output")
	}
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-metatree/pkg/cache"
	treeconfig "github.com/mattsolo1/grove-metatree/pkg/config"
	"github.com/mattsolo1/grove-metatree/pkg/i18n"
	"github.com/mattsolo1/grove-metatree/pkg/models"
	"github.com/mattsolo1/grove-metatree/pkg/preview"
	"github.com/mattsolo1/grove-metatree/pkg/service"
	"github.com/mattsolo1/grove-metatree/pkg/source"
)

// DefaultPage is the page key used when neither --page nor the page setting
// is given.
const DefaultPage = "default"

var (
	cfgFile      string
	PageOverride string
	Verbose      bool
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "mtree")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MTREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	viper.SetDefault("data_dir", treeconfig.DefaultDataDir())
	viper.SetDefault("page", DefaultPage)
	viper.SetDefault("language", "")
	viper.SetDefault("source.kind", treeconfig.SourceNotebook)
	viper.SetDefault("source.root", ".")
	viper.SetDefault("source.base_url", "")
	viper.SetDefault("source.token", "")
	viper.SetDefault("preview.base_url", "")
	viper.SetDefault("preview.view_path", "")
	viper.SetDefault("preview.lookup_columns", []string{})
	viper.SetDefault("preview.probe", false)
	viper.SetDefault("cache.enabled", true)

	if err := viper.ReadInConfig(); err == nil {
		// Do not print this in normal operation, it's noisy.
		logrus.Debugf("using config file %s", viper.ConfigFileUsed())
	}
}

// LoadSettings decodes the current viper state.
func LoadSettings() (*treeconfig.Settings, error) {
	var s treeconfig.Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	s.DataDir = treeconfig.ExpandHome(s.DataDir)
	s.Source.Root = treeconfig.ExpandHome(s.Source.Root)
	if PageOverride != "" {
		s.Page = PageOverride
	}
	if s.Page == "" {
		s.Page = DefaultPage
	}
	return &s, nil
}

// NewLogger returns the process logger: warnings and above on stderr, debug
// with --verbose.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// Runtime bundles the opened stores and the session of one invocation.
type Runtime struct {
	Settings *treeconfig.Settings
	Registry *treeconfig.Registry
	Cache    *cache.SQLiteStore
	Session  *service.Session
	Logger   *logrus.Logger
}

// Close releases the databases.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.Cache != nil {
		r.Cache.Close()
	}
	if r.Registry != nil {
		r.Registry.Close()
	}
}

// NewFetcher builds the item source selected by the settings.
func NewFetcher(s *treeconfig.Settings, logger *logrus.Entry) (source.Fetcher, error) {
	switch s.Source.Kind {
	case treeconfig.SourceNotebook, "":
		return source.NewNotebookFetcher(s.Source.Root, logger), nil
	case treeconfig.SourceREST:
		if s.Source.BaseURL == "" {
			return nil, fmt.Errorf("source.base_url is required for the %q source", treeconfig.SourceREST)
		}
		return source.NewRESTFetcher(s.Source.BaseURL,
			source.WithToken(s.Source.Token),
			source.WithLogger(logger),
		), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", s.Source.Kind)
}

// InitRuntime opens the stores and creates the session for the configured
// page.
func InitRuntime(logger *logrus.Logger) (*Runtime, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	entry := logrus.NewEntry(logger)

	rt := &Runtime{Settings: settings, Logger: logger}

	rt.Registry, err = treeconfig.NewRegistry(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	var store cache.Store
	if settings.Cache.Enabled {
		rt.Cache, err = cache.NewSQLiteStore(filepath.Join(settings.DataDir, "cache.db"))
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("open cache: %w", err)
		}
		store = rt.Cache
	}

	fetcher, err := NewFetcher(settings, entry)
	if err != nil {
		rt.Close()
		return nil, err
	}

	bundle, err := i18n.New(settings.Language)
	if err != nil {
		rt.Close()
		return nil, err
	}

	var prober preview.Prober
	if settings.Preview.Probe {
		prober = preview.NewHTTPProber(nil, entry)
	}
	previewBase := settings.Preview.BaseURL
	if previewBase == "" && settings.Source.Kind != treeconfig.SourceREST {
		previewBase = settings.Source.Root
	}

	rt.Session, err = service.New(service.Options{
		PageKey:  settings.Page,
		Fetcher:  fetcher,
		Configs:  rt.Registry,
		Cache:    store,
		SourceID: SourceID(settings),
		Bundle:   bundle,
		Logger:   entry,
		Opener:   service.SystemOpener{},
		Preview: service.PreviewConfig{
			BaseURL:       previewBase,
			ViewPath:      settings.Preview.ViewPath,
			LookupColumns: settings.Preview.LookupColumns,
			Prober:        prober,
		},
		DocumentURL: documentURL(settings, previewBase),
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// SourceID identifies the backend the settings point at. It separates the
// cache entries of sources that expose libraries with the same name.
func SourceID(s *treeconfig.Settings) string {
	switch s.Source.Kind {
	case treeconfig.SourceREST:
		return treeconfig.SourceREST + ":" + strings.TrimRight(s.Source.BaseURL, "/")
	case "":
		return treeconfig.SourceNotebook + ":" + filepath.Clean(s.Source.Root)
	}
	return s.Source.Kind + ":" + filepath.Clean(s.Source.Root)
}

// documentURL prefixes server-relative file refs of a REST source with the
// origin of the preview site. Notebook items already carry local paths.
func documentURL(s *treeconfig.Settings, previewBase string) func(*models.Item) string {
	if s.Source.Kind != treeconfig.SourceREST || previewBase == "" {
		return nil
	}
	u, err := url.Parse(previewBase)
	if err != nil || u.Host == "" {
		return nil
	}
	origin := u.Scheme + "://" + u.Host
	return func(it *models.Item) string {
		if strings.HasPrefix(it.FileRef, "/") {
			return origin + it.FileRef
		}
		return it.FileRef
	}
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mtree/config.yaml)")
	cmd.PersistentFlags().StringVarP(&PageOverride, "page", "p", "", "Page key of the tree configuration")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable debug logging")
}

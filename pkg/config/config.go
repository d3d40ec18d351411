package config

import (
	"path/filepath"
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config describes all configuration options
type Config struct {
	Toolchain struct {
		Manager string `default:"rustup" usage:"Toolchain manager used for version checks and target installation"`
		Cargo   string `default:"cargo" usage:"Package manager / build driver"`
		Target  string `default:"wasm32-unknown-unknown" usage:"Compilation target triple"`
	}
	Bindgen struct {
		Command string `default:"wasm-bindgen" usage:"Bindings generator executable"`
		Package string `default:"wasm-bindgen-cli" usage:"Crate that provides the bindings generator"`
		Target  string `default:"web" usage:"Value passed to the generator's --target option"`
	}
	OutputDir   string   `default:"dist" usage:"Directory that receives all deployable files"`
	EntryPoint  string   `default:"index.html" usage:"HTML file copied into the output directory"`
	Assets      []string `usage:"Additional glob patterns copied into the output directory"`
	Keep        []string `usage:"Additional top-level entries that survive --rm-src"`
	Precompress bool     `default:"false" usage:"Write brotli compressed copies of the output files"`
	Log         struct {
		Level string `default:"info"`
		JSON  bool   `default:"false" usage:"Output JSONND instead of pretty console messages"`
	}
}

var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// DefaultFiles lists the config files checked in the working directory. Missing files are ignored.
var DefaultFiles = []string{"build-web.toml", "build-web.yml", "build-web.yaml"}

// Loader initializes an empty config object and returns a new Loader for this object
func Loader(files ...string) (*Config, *aconfig.Loader) {
	if len(files) == 0 {
		files = DefaultFiles
	}

	yamlDecoder := &yamlDecoder{}
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BUILD_WEB",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
			".yml":  yamlDecoder,
			".yaml": yamlDecoder,
		},
	})
}

// Load reads the configuration from the default sources and validates it
func Load(files ...string) (*Config, error) {
	cfg, loader := Loader(files...)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if cfg.Toolchain.Manager == "" || cfg.Toolchain.Cargo == "" || cfg.Toolchain.Target == "" {
		return eris.New(`toolchain.manager, toolchain.cargo and toolchain.target must not be empty`)
	}

	if cfg.Bindgen.Command == "" || cfg.Bindgen.Package == "" {
		return eris.New(`bindgen.command and bindgen.package must not be empty`)
	}

	if err := validateName("output_dir", cfg.OutputDir); err != nil {
		return err
	}

	if err := validateName("entry_point", cfg.EntryPoint); err != nil {
		return err
	}

	for _, pattern := range cfg.Assets {
		if err := validatePattern(pattern); err != nil {
			return err
		}
	}

	if cfg.OutputDir == cfg.EntryPoint {
		return eris.Errorf(`output_dir and entry_point can't both be %s`, cfg.OutputDir)
	}

	_, ok := logLevels[strings.ToLower(cfg.Log.Level)]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[strings.ToLower(cfg.Log.Level)]
}

// KeepNames returns the top-level names the source remover must never touch.
func (cfg *Config) KeepNames() []string {
	names := []string{cfg.OutputDir, ".git", cfg.EntryPoint}
	return append(names, cfg.Keep...)
}

// The output directory and entry point are matched by name against the project root, so both have to be
// plain names inside it.
func validateName(field, value string) error {
	if value == "" {
		return eris.Errorf(`%s must not be empty`, field)
	}

	if value == "." || value == ".." || filepath.IsAbs(value) || strings.ContainsAny(value, `/\`) {
		return eris.Errorf(`Invalid value for %s: %s (must be a name inside the project root)`, field, value)
	}

	return nil
}

// Asset patterns are expanded below the project root and copied to the same relative path in the output
// directory.
func validatePattern(pattern string) error {
	clean := filepath.ToSlash(pattern)
	if clean == "" || filepath.IsAbs(pattern) || strings.HasPrefix(clean, "/") {
		return eris.Errorf(`Invalid asset pattern %q (must be relative to the project root)`, pattern)
	}

	for _, part := range strings.Split(clean, "/") {
		if part == ".." {
			return eris.Errorf(`Invalid asset pattern %q (must not leave the project root)`, pattern)
		}
	}

	return nil
}

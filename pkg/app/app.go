package app

import (
	"context"
	"crypto/tls"
	"expvar"
	"flag"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	metrics_util "github.com/metaverf/metaverf-ledger/pkg/metrics"
	"github.com/metaverf/metaverf-ledger/pkg/osutil"
)

// App is a long lived application that services network requests.
//
// The lifecycle of the App is tied to the process. The app gets initialized
// before the HTTP server runs, and gets stopped after the HTTP server has
// stopped serving.
type App interface {
	// Init initializes the application in a blocking fashion. When Init returns, it
	// is expected that the application is ready to start receiving requests.
	Init(config Config, metricsProvider *newrelic.Application) error

	// RegisterWithHTTP provides a mechanism for the application to install its
	// handlers on the HTTP server.
	RegisterWithHTTP(mux *http.ServeMux)

	// ShutdownChan returns a channel that is closed when the application is shutdown.
	//
	// If the channel is closed, the HTTP server will initiate a shutdown if it has
	// not already done so.
	ShutdownChan() <-chan struct{}

	// Stop stops the service, allowing for it to clean up any resources. When Stop()
	// returns, the process exits.
	//
	// Stop should be idempotent.
	Stop()
}

const (
	healthPath = "/health"

	debugServerRetryDelay = 5 * time.Second
	maxBallastCapacity    = 0.5
)

var (
	configPath = flag.String("config", "config.yaml", "configuration file path")

	osSigCh = make(chan os.Signal, 1)
)

func init() {
	signal.Notify(osSigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

// Run loads the base config, initializes app and serves it over HTTP until a
// shutdown condition is met. Errors before serving starts are returned
// without stopping app.
func Run(app App, options ...Option) error {
	flag.Parse()

	log := logrus.StandardLogger().WithField("type", "app")

	config, err := loadConfig(*configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	metricsProvider, err := newMetricsProvider(config)
	if err != nil {
		return errors.Wrap(err, "error connecting to new relic")
	}
	configureLogger(config, metricsProvider)

	startDebugServer(log, config)
	ballast := allocateBallast(config)

	restartCh, err := scheduleRestart(config)
	if err != nil {
		return errors.Wrap(err, "failed to initialize memory leak cron")
	}

	lis, err := newListener(config)
	if err != nil {
		return err
	}

	opts := opts{
		middleware: []Middleware{recoveryMiddleware(log)},
	}
	if metricsProvider != nil {
		opts.middleware = append([]Middleware{newRelicMiddleware(metricsProvider)}, opts.middleware...)
	}
	for _, o := range options {
		o(&opts)
	}

	if err := app.Init(config.AppConfig, metricsProvider); err != nil {
		lis.Close()
		return errors.Wrap(err, "failed to initialize application")
	}

	mux := http.NewServeMux()
	app.RegisterWithHTTP(mux)
	mux.HandleFunc(healthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serv := &http.Server{
		Handler:           chain(mux, opts.middleware),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	servDoneCh := make(chan struct{})
	go func() {
		defer close(servDoneCh)

		if err := serv.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server stopped unexpectedly")
		}
	}()

	select {
	case sig := <-osSigCh:
		log.WithField("signal", sig.String()).Info("shutting down on signal")
	case <-servDoneCh:
		log.Info("shutting down after the http server stopped")
	case <-restartCh:
		log.Info("shutting down for scheduled restart")
	case <-app.ShutdownChan():
		log.Info("shutting down after the application stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
	defer cancel()

	stoppedCh := make(chan struct{})
	go func() {
		defer close(stoppedCh)

		// Server and application shutdown are both idempotent, so they run
		// regardless of which one triggered it.
		if err := serv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http server did not shutdown gracefully")
		}
		app.Stop()
	}()

	select {
	case <-stoppedCh:
		runtime.KeepAlive(ballast)
		return nil
	case <-shutdownCtx.Done():
		return errors.Errorf("failed to stop the application within %v", config.ShutdownGracePeriod)
	}
}

func newMetricsProvider(config BaseConfig) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

// startDebugServer serves pprof and expvar on a separate listener so they
// are never reachable through the public address.
func startDebugServer(log *logrus.Entry, config BaseConfig) {
	// Importing pprof and expvar installs their handlers on the default mux
	http.DefaultServeMux = http.NewServeMux()

	if !config.EnableExpvar && !config.EnablePprof {
		return
	}

	debugMux := http.NewServeMux()
	if config.EnableExpvar {
		debugMux.Handle("/debug/vars", expvar.Handler())
	}
	if config.EnablePprof {
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	go func() {
		for {
			err := http.ListenAndServe(config.DebugListenAddress, debugMux)
			log.WithError(err).Warnf("debug http server failed, retrying in %v", debugServerRetryDelay)
			time.Sleep(debugServerRetryDelay)
		}
	}()
}

// allocateBallast reserves a share of the container's memory, capped at
// half, so that the garbage collector runs less often on a small live heap.
func allocateBallast(config BaseConfig) []byte {
	if !config.EnableBallast {
		return nil
	}

	capacity := min(config.BallastCapacity, maxBallastCapacity)
	return make([]byte, uint64(capacity*float32(osutil.GetTotalMemory())))
}

// scheduleRestart returns a channel that is closed the first time the
// memory leak cron schedule fires. It is never closed when the cron is
// disabled.
func scheduleRestart(config BaseConfig) (<-chan struct{}, error) {
	restartCh := make(chan struct{})
	if !config.EnableMemoryLeakCron {
		return restartCh, nil
	}

	var once sync.Once
	scheduler := cron.New(cron.WithLocation(time.Local))
	if _, err := scheduler.AddFunc(config.MemoryLeakCronSchedule, func() {
		once.Do(func() { close(restartCh) })
	}); err != nil {
		return nil, err
	}
	scheduler.Start()

	return restartCh, nil
}

func newListener(config BaseConfig) (net.Listener, error) {
	tlsConfig, err := loadTLSConfig(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls configuration")
	}

	lis, err := net.Listen("tcp", config.ListenAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", config.ListenAddress)
	}

	if tlsConfig != nil {
		lis = tls.NewListener(lis, tlsConfig)
	}
	return lis, nil
}

func loadConfig(path string) (BaseConfig, error) {
	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we do it ourselves.
	if _, err := os.Stat(path); err == nil {
		viper.SetConfigFile(path)
	} else if !os.IsNotExist(err) {
		return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return BaseConfig{}, err
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.AppName) == 0 {
		return BaseConfig{}, errors.New("must specify an application name")
	}

	return config, nil
}

func loadTLSConfig(config BaseConfig) (*tls.Config, error) {
	if config.TLSCertificate == "" {
		return nil, nil
	}

	if config.TLSKey == "" {
		return nil, errors.New("tls key must be provided if certificate is specified")
	}

	certBytes, err := LoadFile(config.TLSCertificate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls certificate")
	}

	keyBytes, err := LoadFile(config.TLSKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls key")
	}

	cert, err := tls.X509KeyPair(certBytes, keyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "invalid certificate/private key")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics_util.NewCustomNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stdout)
}

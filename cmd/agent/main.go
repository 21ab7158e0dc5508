package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/signalfx/docker-stats-agent/internal/core"

	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	// Version for agent
	Version string

	// BuiltTime for the agent
	BuiltTime string
)

const defaultConfigPath = "/etc/docker-stats-agent/agent.yaml"

func init() {
	log.SetFormatter(&prefixed.TextFormatter{})
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stdout)
}

// flags is used to store parsed flag values
type flags struct {
	// version is a bool flag for printing the agent version string
	version bool
	// configPath is a string flag for specifying the agent.yaml config file
	configPath string
	// debug is a bool flag for printing debug level information
	debug bool
}

// getFlags retrieves flags passed to the agent at runtime and return them in a flags struct
func getFlags() *flags {
	flags := &flags{}
	set := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	set.BoolVar(&flags.version, "version", false, "print agent version")
	set.StringVar(&flags.configPath, "config", defaultConfigPath, "agent config path")
	set.BoolVar(&flags.debug, "debug", false, "print debugging output")

	// The set is configured to exit on errors so we don't need to check the
	// return value here.
	set.Parse(os.Args[1:])
	if len(set.Args()) > 0 {
		os.Stderr.WriteString("Non-flag parameters are not accepted\n")
		set.Usage()
		os.Exit(2)
	}
	return flags
}

func startAgent(configPath string) (context.CancelFunc, <-chan struct{}) {
	log.Info("Starting up agent version " + Version)
	shutdown, shutdownComplete, err := core.Startup(configPath)
	if err != nil {
		log.WithFields(log.Fields{
			"error":      err,
			"configPath": configPath,
		}).Error("Could not start agent")
		os.Exit(1)
	}
	return shutdown, shutdownComplete
}

func runAgent(flags *flags, interruptCh chan os.Signal) {
	shutdown, shutdownComplete := startAgent(flags.configPath)

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)

	for {
		select {
		case <-interruptCh:
			log.Info("Interrupt signal received, stopping agent")
			shutdown()
			select {
			case <-shutdownComplete:
			case <-time.After(10 * time.Second):
				log.Error("Shutdown timed out, forcing process down")
			}
			return
		case <-hupCh:
			log.Info("Forcing agent reset")
			shutdown()
			<-shutdownComplete
			shutdown, shutdownComplete = startAgent(flags.configPath)
		}
	}
}

func main() {
	core.VersionLine = fmt.Sprintf("agent-version: %s, built-time: %s\n",
		Version, BuiltTime)

	var firstArg string
	if len(os.Args) >= 2 {
		firstArg = os.Args[1]
	}

	switch firstArg {
	case "stats":
		os.Exit(doStats(os.Args[2:]))
	case "query":
		os.Exit(doQuery(os.Args[2:]))
	default:
		if firstArg != "" && !strings.HasPrefix(firstArg, "-") {
			log.Errorf("Unknown subcommand '%s'", firstArg)
			os.Exit(127)
		}

		flags := getFlags()

		if flags.debug {
			log.SetLevel(log.DebugLevel)
		}

		if flags.version {
			fmt.Print(core.VersionLine)
			os.Exit(0)
		}

		interruptCh := make(chan os.Signal, 1)
		signal.Notify(interruptCh, os.Interrupt)
		signal.Notify(interruptCh, syscall.SIGTERM)

		runAgent(flags, interruptCh)
	}

	os.Exit(0)
}

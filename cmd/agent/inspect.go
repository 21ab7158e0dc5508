package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"

	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
	"github.com/signalfx/docker-stats-agent/internal/core/common/httpclient"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/signalfx/docker-stats-agent/internal/monitors/docker"
	"github.com/signalfx/docker-stats-agent/internal/monitors/elasticsearch/client"
	"github.com/signalfx/docker-stats-agent/internal/monitors/elasticsearch/query"
	"github.com/signalfx/docker-stats-agent/internal/utils/filter"
)

// Print one stats snapshot of a single container, as the collector would
// see it
func doStats(args []string) int {
	set := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := set.String("config", defaultConfigPath, "agent config path, used for the docker connection settings")
	set.Parse(args)

	if set.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: stats [-config path] <container id or name>")
		return 2
	}
	log.SetOutput(os.Stderr)

	dockerConf := &dockercommon.Config{}
	if conf, err := config.LoadConfig(*configPath); err == nil {
		dockerConf = &conf.Docker
	} else {
		log.WithError(err).Warn("Could not load config, using the default docker connection")
		dockerConf.DockerURL = "unix:///var/run/docker.sock"
		dockerConf.TimeoutSeconds = 5
	}

	ctx := context.Background()
	cli, err := dockercommon.NewClient(ctx, dockerConf)
	if err != nil {
		log.WithError(err).Error("Could not connect to docker")
		return 1
	}
	defer cli.Close()

	c, err := cli.Inspect(ctx, set.Arg(0))
	if err != nil {
		log.WithError(err).Error("Could not inspect container")
		return 1
	}
	stats, err := cli.FetchStats(ctx, c.ID)
	if err != nil {
		log.WithError(err).Error("Could not fetch container stats")
		return 1
	}
	rec := docker.ConvertStats(stats)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", c.ID)
	fmt.Fprintf(w, "name\t%s\n", c.Name)
	fmt.Fprintf(w, "image\t%s\n", c.ImageReference)
	fmt.Fprintf(w, "read\t%s\n", stats.Read.Format(time.RFC3339))
	fmt.Fprintf(w, "cpu_usage\t%d\n", rec.CPUUsageTotal)
	fmt.Fprintf(w, "max_mem\t%d\n", rec.MaxMemoryUsage)
	fmt.Fprintf(w, "blk_in\t%d\n", rec.BlockIOReadBytes)
	fmt.Fprintf(w, "blk_out\t%d\n", rec.BlockIOWriteBytes)
	fmt.Fprintf(w, "net_in\t%d\n", rec.NetworkRxBytes)
	fmt.Fprintf(w, "net_out\t%d\n", rec.NetworkTxBytes)

	keys := make([]string, 0, len(c.Labels))
	for k := range c.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "label %s\t%s\n", k, c.Labels[k])
	}
	w.Flush()
	return 0
}

// Show what the elasticsearch sink has indexed, per container
func doQuery(args []string) int {
	set := flag.NewFlagSet("query", flag.ExitOnError)
	url := set.String("url", "http://localhost:9200", "elasticsearch base url")
	index := set.String("index", "docker", "index that the elasticsearch writer writes to")
	window := set.Duration("window", 5*time.Minute, "only look at documents newer than this")
	maxima := set.Bool("maxima", false, "show the largest value of each data source instead of the newest document")
	match := set.String("match", "", "comma separated type instance patterns; globs, /regexes/ and ! negation are supported")
	username := set.String("username", "", "basic auth username")
	password := set.String("password", "", "basic auth password")
	set.Parse(args)
	log.SetOutput(os.Stderr)

	var include *filter.BasicStringFilter
	if *match != "" {
		var err error
		include, err = filter.NewBasicStringFilter(strings.Split(*match, ","))
		if err != nil {
			log.WithError(err).Error("Invalid -match")
			return 2
		}
	}

	httpConf := httpclient.HTTPConfig{
		TimeoutSeconds: 10,
		Username:       *username,
		Password:       *password,
	}
	httpClient, err := httpConf.Build()
	if err != nil {
		log.WithError(err).Error("Could not create http client")
		return 1
	}
	es, err := client.NewESClient(*url, httpClient)
	if err != nil {
		log.WithError(err).Error("Could not create elasticsearch client")
		return 1
	}

	q := &query.Querier{Client: es, Index: *index}
	ctx := context.Background()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if *maxima {
		dsNames := docker.DefaultDataset().Names()
		results, err := q.MaximaPerContainer(ctx, *window, dsNames)
		if err != nil {
			log.WithError(err).Error("Query failed")
			return 1
		}
		fmt.Fprintf(w, "type_instance\tdocs\tlast_update\t%s\n", strings.Join(dsNames, "\t"))
		for _, r := range results {
			if include != nil && !include.Matches(r.TypeInstance) {
				continue
			}
			cols := make([]string, len(dsNames))
			for i, ds := range dsNames {
				if v, ok := r.Maxima[ds]; ok {
					cols[i] = fmt.Sprintf("%.0f", v)
				} else {
					cols[i] = "-"
				}
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.TypeInstance, r.DocCount, r.LastUpdate.Format(time.RFC3339), strings.Join(cols, "\t"))
		}
		return 0
	}

	results, err := q.LatestPerContainer(ctx, *window)
	if err != nil {
		log.WithError(err).Error("Query failed")
		return 1
	}
	fmt.Fprintln(w, "type_instance\ttimestamp\tcpu_usage\tmax_mem")
	for _, r := range results {
		if include != nil && !include.Matches(r.TypeInstance) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%v\n", r.TypeInstance, r.Timestamp.Format(time.RFC3339), r.Document["cpu_usage"], r.Document["max_mem"])
	}
	return 0
}

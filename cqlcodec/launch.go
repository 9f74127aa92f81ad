package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/config"
	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/cqlvalue"
	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/metrics"
	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/metrics/noopmetrics"
	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/metrics/prommetrics"
	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/resultset"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
)

type commandLine struct {
	configFile    string
	cqlType       string
	encodeLiteral string
	decodeHex     string
	frameFile     string

	// an empty literal is valid for text types, so presence is tracked separately
	encodeSet bool
	decodeSet bool
}

func launchCodec(cmd *commandLine) {
	conf, err := config.New().LoadConfig(cmd.configFile)
	if err != nil {
		log.Errorf("Error loading configuration: %v. Aborting.", err)
		os.Exit(-1)
	}

	logLevel, err := conf.ParseLogLevel()
	if err != nil {
		log.Errorf("Error loading log level configuration: %v. Aborting.", err)
		os.Exit(-1)
	}
	log.SetLevel(logLevel)

	if err = run(conf, cmd, os.Stdout); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(conf *config.Config, cmd *commandLine, out io.Writer) error {
	version, err := conf.ParseProtocolVersion()
	if err != nil {
		return err
	}

	switch {
	case cmd.frameFile != "":
		return printFrame(conf, cmd.frameFile, out)
	case cmd.encodeSet && cmd.decodeSet:
		return errors.New("-encode and -decode are mutually exclusive")
	case cmd.encodeSet:
		code, err := cqlvalue.ParseTypeName(cmd.cqlType)
		if err != nil {
			return err
		}
		cell, err := cqlvalue.ParseLiteral(code, cmd.encodeLiteral)
		if err != nil {
			return err
		}
		framed, err := cqlvalue.FrameCell(cell, version)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, hex.EncodeToString(framed))
		return err
	case cmd.decodeSet:
		code, err := cqlvalue.ParseTypeName(cmd.cqlType)
		if err != nil {
			return err
		}
		contents, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(cmd.decodeHex, "0x"), "0X"))
		if err != nil {
			return fmt.Errorf("invalid hex cell %v: %w", cmd.decodeHex, err)
		}
		value, err := cqlvalue.DecodeCell(code, contents)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, value.String())
		return err
	default:
		return errors.New("nothing to do, use -encode, -decode or -frame")
	}
}

func printFrame(conf *config.Config, frameFile string, out io.Writer) error {
	version, err := conf.ParseProtocolVersion()
	if err != nil {
		return err
	}
	compression, err := conf.ParseCompression()
	if err != nil {
		return err
	}

	f, err := os.Open(frameFile)
	if err != nil {
		return fmt.Errorf("could not open frame file: %w", err)
	}
	defer f.Close()

	result, err := resultset.ReadRowsResult(f, version, compression)
	if err != nil {
		return err
	}

	var registry *prometheus.Registry
	var metricFactory metrics.MetricFactory
	if conf.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metricFactory = prommetrics.NewPrometheusMetricFactory(registry, conf.MetricsPrefix)
	} else {
		metricFactory = noopmetrics.NewNoopMetricFactory()
	}
	codecMetrics, err := metrics.NewCodecMetrics(metricFactory)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	defer func() {
		if err := metricFactory.UnregisterAllMetrics(); err != nil {
			log.Warnf("Failed to unregister metrics: %v.", err)
		}
	}()

	rows, err := resultset.NewTypedRows(result, formatRow, resultset.WithMetrics(codecMetrics))
	if err != nil {
		return err
	}

	names := make([]string, len(rows.Columns()))
	for i, col := range rows.Columns() {
		names[i] = col.Name
	}
	fmt.Fprintln(out, strings.Join(names, " | "))

	failed := 0
	for literals, err := range rows.All() {
		if err != nil {
			failed++
			log.Warnf("Skipping row: %v.", err)
			continue
		}
		fmt.Fprintln(out, strings.Join(literals, " | "))
	}

	if registry != nil {
		families, err := registry.Gather()
		if err != nil {
			return fmt.Errorf("could not gather metrics: %w", err)
		}
		writeMetrics(out, families)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rows could not be decoded", failed, len(result.Data))
	}
	return nil
}

func formatRow(row *resultset.Row) ([]string, error) {
	literals := make([]string, len(row.Values))
	for i, v := range row.Values {
		literals[i] = v.String()
	}
	return literals, nil
}

func writeMetrics(out io.Writer, families []*dto.MetricFamily) {
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%v=%q", l.GetName(), l.GetValue()))
			}
			sort.Strings(labels)
			labelSuffix := ""
			if len(labels) > 0 {
				labelSuffix = fmt.Sprintf("{%v}", strings.Join(labels, ","))
			}

			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(out, "%v%v %v\n", mf.GetName(), labelSuffix, m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				fmt.Fprintf(out, "%v_count%v %v\n", mf.GetName(), labelSuffix, m.GetHistogram().GetSampleCount())
				fmt.Fprintf(out, "%v_sum%v %v\n", mf.GetName(), labelSuffix, m.GetHistogram().GetSampleSum())
			}
		}
	}
}

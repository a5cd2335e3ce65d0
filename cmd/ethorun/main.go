// Command ethorun loads an XML behavior tree description and ticks its
// main tree to completion, logging the final status (and, with
// -verbose, the status after every tick).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rhizome-labs/ethogram"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		treePath   = flag.String("tree", "", "path to the XML behavior tree description (required)")
		mainTreeID = flag.String("main-tree", "", "override the document's main_tree_to_execute")
		tickRate   = flag.Duration("tick-rate", 250*time.Millisecond, "delay between ticks while the tree is Running")
		redisAddr  = flag.String("redis-seed-addr", "", "redis address to seed the blackboard from (optional)")
		redisKey   = flag.String("redis-seed-key", "", "redis hash key holding the seed fields")
		zipkinURL  = flag.String("zipkin", "", "zipkin collector HTTP endpoint, e.g. http://localhost:9411/api/v2/spans (optional)")
		printTree  = flag.Bool("print-tree", false, "print the constructed tree before ticking")
		verbose    = flag.Bool("verbose", false, "log every tick at debug level")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logrus.NewEntry(logger)

	if *treePath == "" {
		log.Fatal("ethorun: -tree is required")
	}

	registry := ethogram.NewRegistry()
	ethogram.RegisterBuiltins(registry)
	registerDemoActions(registry)

	doc, err := ethogram.LoadDocument(*treePath, registry)
	if err != nil {
		log.WithError(err).Fatal("ethorun: failed to load tree")
	}

	id := doc.MainID()
	if *mainTreeID != "" {
		id = *mainTreeID
	}

	bb := ethogram.NewBlackboard()
	if *redisAddr != "" {
		if *redisKey == "" {
			log.Fatal("ethorun: -redis-seed-key is required alongside -redis-seed-addr")
		}
		if err := seedFromRedis(bb, *redisAddr, *redisKey); err != nil {
			log.WithError(err).Fatal("ethorun: failed to seed blackboard from redis")
		}
	}

	opts := []ethogram.TreeOption{
		ethogram.WithTickRate(*tickRate),
		ethogram.WithLogger(log),
	}

	if *zipkinURL != "" {
		tracer, err := newZipkinTracer(*zipkinURL, "ethorun")
		if err != nil {
			log.WithError(err).Fatal("ethorun: failed to build zipkin tracer")
		}
		opts = append(opts, ethogram.WithTracer(tracer))
	}

	tree, err := doc.Build(id, bb, opts...)
	if err != nil {
		log.WithError(err).Fatal("ethorun: failed to build tree")
	}

	if *printTree {
		fmt.Println(ethogram.TreePrint(tree.Root()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Warn("ethorun: interrupt received, halting tree")
		cancel()
	}()

	status, err := tree.TickWhileRunning(ctx)
	if err != nil {
		log.WithError(err).Fatal("ethorun: tree execution ended with an error")
	}

	log.WithField("status", status.String()).Info("ethorun: tree execution finished")
	if status != ethogram.Success {
		os.Exit(1)
	}
}

// registerDemoActions registers a handful of leaf node types useful
// for exercising trees without any application-specific integration:
// logging, waiting, and always-succeed/always-fail stubs.
func registerDemoActions(reg *ethogram.Registry) {
	reg.Register("AlwaysSuccess", ethogram.ActionNodeType, nil, 0, 0, func(cfg ethogram.NodeConfig, _ []ethogram.Node) (ethogram.Node, error) {
		return ethogram.NewActionFunc(cfg.Name, func(_ context.Context) (ethogram.NodeStatus, error) {
			return ethogram.Success, nil
		}), nil
	})

	reg.Register("AlwaysFailure", ethogram.ActionNodeType, nil, 0, 0, func(cfg ethogram.NodeConfig, _ []ethogram.Node) (ethogram.Node, error) {
		return ethogram.NewActionFunc(cfg.Name, func(_ context.Context) (ethogram.NodeStatus, error) {
			return ethogram.Failure, nil
		}), nil
	})

	logPorts := ethogram.PortsList{
		"message": ethogram.InputPort("message", "text to log"),
	}
	reg.Register("Log", ethogram.ActionNodeType, logPorts, 0, 0, func(cfg ethogram.NodeConfig, _ []ethogram.Node) (ethogram.Node, error) {
		return ethogram.NewActionFunc(cfg.Name, func(_ context.Context) (ethogram.NodeStatus, error) {
			message, err := ethogram.GetInput[string](cfg, "message")
			if err != nil {
				return ethogram.Failure, err
			}
			fmt.Println(message)
			return ethogram.Success, nil
		}), nil
	})

	waitPorts := ethogram.PortsList{
		"duration": ethogram.InputPort("duration", "how long to run before succeeding, e.g. \"2s\""),
	}
	reg.Register("Wait", ethogram.ActionNodeType, waitPorts, 0, 0, func(cfg ethogram.NodeConfig, _ []ethogram.Node) (ethogram.Node, error) {
		var deadline time.Time
		return ethogram.NewActionFunc(cfg.Name, func(_ context.Context) (ethogram.NodeStatus, error) {
			raw, err := ethogram.GetInput[string](cfg, "duration")
			if err != nil {
				return ethogram.Failure, err
			}
			d, err := time.ParseDuration(raw)
			if err != nil {
				return ethogram.Failure, fmt.Errorf("ethorun: parsing wait duration %q: %w", raw, err)
			}
			if deadline.IsZero() {
				deadline = time.Now().Add(d)
			}
			if time.Now().Before(deadline) {
				return ethogram.Running, nil
			}
			deadline = time.Time{}
			return ethogram.Success, nil
		}), nil
	})
}

// Package consul keeps node definitions and rendered configs in Consul KV.
package consul

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	consulapi "github.com/hashicorp/consul/api"

	"meshconf/pkg/model"
	"meshconf/pkg/store"
)

const (
	DefaultPrefix = "meshconf"
	nodesDir      = "/nodes/"
	confDir       = "/conf/"
	// Consul rejects transactions with more operations than this.
	maxTxnOps = 64
)

var errRolledBack = errors.New("consul transaction rolled back")

// Store reads definitions from <prefix>/nodes/<name> and writes rendered
// configs to <prefix>/conf/<name>.
type Store struct {
	cli    *consulapi.Client
	prefix string
	sep    string
}

func NewStore(addr, prefix, sep string) (*Store, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if sep == "" {
		sep = store.DefaultSeparator
	}
	return &Store{cli: cli, prefix: strings.TrimSuffix(prefix, "/"), sep: sep}, nil
}

func (s *Store) Definitions(ctx context.Context) ([]store.Definition, error) {
	nodePrefix := s.prefix + nodesDir
	pairs, _, err := s.cli.KV().List(nodePrefix, (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", nodePrefix, err)
	}
	defs := make([]store.Definition, 0, len(pairs))
	for _, p := range pairs {
		name := strings.TrimPrefix(p.Key, nodePrefix)
		// folders and nested keys are not definitions
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		defs = append(defs, store.Definition{Name: name, Text: string(p.Value)})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// Write stores outputs in as few transactions as Consul allows. Each
// transaction is atomic; a batch larger than one transaction is not.
func (s *Store) Write(ctx context.Context, outputs []model.Output) error {
	ops := make(consulapi.KVTxnOps, 0, len(outputs))
	for _, o := range outputs {
		ops = append(ops, &consulapi.KVTxnOp{
			Verb:  consulapi.KVSet,
			Key:   s.Key(o),
			Value: []byte(o.Text),
		})
	}
	q := (&consulapi.QueryOptions{}).WithContext(ctx)
	for start := 0; start < len(ops); start += maxTxnOps {
		end := min(start+maxTxnOps, len(ops))
		ok, resp, _, err := s.cli.KV().Txn(ops[start:end], q)
		if err != nil {
			return fmt.Errorf("consul txn: %w", err)
		}
		if !ok {
			if resp != nil && len(resp.Errors) > 0 {
				return fmt.Errorf("%w: %s", errRolledBack, resp.Errors[0].What)
			}
			return errRolledBack
		}
	}
	return nil
}

// Key returns the KV key an output is written to.
func (s *Store) Key(o model.Output) string {
	return s.prefix + confDir + o.Name(s.sep)
}

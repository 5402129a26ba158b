package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	QdbTypePostgres = "postgres"
	QdbTypeMem      = "mem"

	ColumnEncodingName = "name"
	ColumnEncodingNode = "node"

	SequencerQdb  = "qdb"
	SequencerEtcd = "etcd"

	defaultConnectRetries = 5
)

// Layout names the objects that hold distribution metadata.
type Layout struct {
	Schema              string `json:"schema" toml:"schema" yaml:"schema"`
	PartitionTable      string `json:"partition_table" toml:"partition_table" yaml:"partition_table"`
	ShardTable          string `json:"shard_table" toml:"shard_table" yaml:"shard_table"`
	PlacementTable      string `json:"placement_table" toml:"placement_table" yaml:"placement_table"`
	ShardIDSequence     string `json:"shard_id_sequence" toml:"shard_id_sequence" yaml:"shard_id_sequence"`
	PlacementIDSequence string `json:"placement_id_sequence" toml:"placement_id_sequence" yaml:"placement_id_sequence"`
}

// Catalog is the whole process configuration. It is built once at startup
// and handed to constructors; nothing mutates it afterwards.
type Catalog struct {
	LogLevel    string `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFileName string `json:"log_filename" toml:"log_filename" yaml:"log_filename"`
	PrettyLogs  bool   `json:"pretty_logs" toml:"pretty_logs" yaml:"pretty_logs"`

	QdbType        string `json:"qdb_type" toml:"qdb_type" yaml:"qdb_type"`
	ConnString     string `json:"conn_string" toml:"conn_string" yaml:"conn_string"`
	MemBackupPath  string `json:"mem_backup_path" toml:"mem_backup_path" yaml:"mem_backup_path"`
	ConnectRetries uint64 `json:"connect_retries" toml:"connect_retries" yaml:"connect_retries"`

	Layout Layout `json:"layout" toml:"layout" yaml:"layout"`

	ColumnEncoding string `json:"column_encoding" toml:"column_encoding" yaml:"column_encoding"`

	Sequencer string `json:"sequencer" toml:"sequencer" yaml:"sequencer"`
	EtcdAddr  string `json:"etcd_addr" toml:"etcd_addr" yaml:"etcd_addr"`
}

// DefaultLayout mirrors the pg_shard metadata schema.
func DefaultLayout() Layout {
	return Layout{
		Schema:              "pgs_distribution_metadata",
		PartitionTable:      "partition",
		ShardTable:          "shard",
		PlacementTable:      "shard_placement",
		ShardIDSequence:     "shard_id_sequence",
		PlacementIDSequence: "shard_placement_id_sequence",
	}
}

// DefaultCatalog returns a configuration that runs entirely in memory.
func DefaultCatalog() *Catalog {
	c := &Catalog{ConnectRetries: defaultConnectRetries}
	c.fillDefaults()
	return c
}

func (c *Catalog) fillDefaults() {
	def := DefaultLayout()
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.QdbType == "" {
		c.QdbType = QdbTypeMem
	}
	if c.Layout.Schema == "" {
		c.Layout.Schema = def.Schema
	}
	if c.Layout.PartitionTable == "" {
		c.Layout.PartitionTable = def.PartitionTable
	}
	if c.Layout.ShardTable == "" {
		c.Layout.ShardTable = def.ShardTable
	}
	if c.Layout.PlacementTable == "" {
		c.Layout.PlacementTable = def.PlacementTable
	}
	if c.Layout.ShardIDSequence == "" {
		c.Layout.ShardIDSequence = def.ShardIDSequence
	}
	if c.Layout.PlacementIDSequence == "" {
		c.Layout.PlacementIDSequence = def.PlacementIDSequence
	}
	if c.ColumnEncoding == "" {
		c.ColumnEncoding = ColumnEncodingName
	}
	if c.Sequencer == "" {
		c.Sequencer = SequencerQdb
	}
}

// Validate checks enumerated settings and the settings they imply.
func (c *Catalog) Validate() error {
	switch c.QdbType {
	case QdbTypeMem:
	case QdbTypePostgres:
		if c.ConnString == "" {
			return fmt.Errorf("conn_string is required for qdb type %q", c.QdbType)
		}
	default:
		return fmt.Errorf("qdb implementation %s is invalid", c.QdbType)
	}

	switch c.ColumnEncoding {
	case ColumnEncodingName, ColumnEncodingNode:
	default:
		return fmt.Errorf("unknown column encoding %q, expected %q or %q", c.ColumnEncoding, ColumnEncodingName, ColumnEncodingNode)
	}

	switch c.Sequencer {
	case SequencerQdb:
	case SequencerEtcd:
		if c.EtcdAddr == "" {
			return fmt.Errorf("etcd_addr is required for sequencer %q", c.Sequencer)
		}
	default:
		return fmt.Errorf("unknown sequencer %q", c.Sequencer)
	}
	return nil
}

// LoadCatalogCfg loads, completes and validates the configuration at cfgPath.
//
// Parameters:
//   - cfgPath (string): The path of the configuration file.
//
// Returns:
//   - *Catalog: the loaded configuration.
//   - error: An error if any occurred during the loading process.
func LoadCatalogCfg(cfgPath string) (*Catalog, error) {
	// zero is a valid retry count, so its default is set before decoding
	ccfg := Catalog{ConnectRetries: defaultConnectRetries}
	file, err := os.Open(cfgPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := initConfig(file, &ccfg); err != nil {
		return nil, err
	}

	ccfg.fillDefaults()
	if err := ccfg.Validate(); err != nil {
		return nil, err
	}
	return &ccfg, nil
}

// String renders the configuration as indented JSON for startup logs.
func (c *Catalog) String() string {
	configBytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unprintable config: %v>", err)
	}
	return string(configBytes)
}

package partitions

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pg-sharding/distmeta/pkg/config"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/qdb"
)

// ColumnCodec converts a column reference to and from the text stored in
// the key column of the partition table.
type ColumnCodec interface {
	Encode(col *ColumnRef) (string, error)
	Decode(ctx context.Context, r ColumnResolver, relID qdb.RelationID, key string) (*ColumnRef, error)
}

func NewColumnCodec(encoding string) (ColumnCodec, error) {
	switch encoding {
	case config.ColumnEncodingName, "":
		return NameCodec{}, nil
	case config.ColumnEncodingNode:
		return NodeCodec{}, nil
	default:
		return nil, dmerror.Newf(dmerror.DM_INVALID_PARAMETER, "unknown column encoding %q", encoding)
	}
}

// NameCodec stores the column name.
type NameCodec struct{}

var _ ColumnCodec = NameCodec{}

func (NameCodec) Encode(col *ColumnRef) (string, error) {
	if col.Name == "" {
		return "", dmerror.New(dmerror.DM_NULL_ARGUMENT, "column name must not be empty")
	}
	return col.Name, nil
}

func (NameCodec) Decode(ctx context.Context, r ColumnResolver, relID qdb.RelationID, key string) (*ColumnRef, error) {
	return LookupColumnByName(ctx, r, relID, key)
}

// NodeCodec stores the column as PostgreSQL node text of a Var, e.g.
//
//	{VAR :varno 1 :varattno 2 :vartype 23 :vartypmod -1 :varcollid 0 :varlevelsup 0 :varnoold 1 :varoattno 2 :location -1}
//
// Type, typmod and collation come from the stored text; only the name is
// taken from the host catalog.
type NodeCodec struct{}

var _ ColumnCodec = NodeCodec{}

func (NodeCodec) Encode(col *ColumnRef) (string, error) {
	if col.AttNum <= 0 {
		return "", dmerror.Newf(dmerror.DM_INVALID_COLUMN_REFERENCE, "attribute %d is a system column", col.AttNum)
	}
	return fmt.Sprintf("{VAR :varno 1 :varattno %d :vartype %d :vartypmod %d :varcollid %d :varlevelsup 0 :varnoold 1 :varoattno %d :location -1}",
		col.AttNum, col.TypeID, col.TypMod, col.Collation, col.AttNum), nil
}

func (NodeCodec) Decode(ctx context.Context, r ColumnResolver, relID qdb.RelationID, key string) (*ColumnRef, error) {
	v, err := ParseVarNode(key)
	if err != nil {
		return nil, err
	}
	col, err := LookupColumnByNum(ctx, r, relID, v.AttNum)
	if err != nil {
		return nil, err
	}
	col.TypeID = v.TypeID
	col.TypMod = v.TypMod
	col.Collation = v.Collation
	return col, nil
}

// VarNode holds the fields of a Var node that identify a column.
type VarNode struct {
	AttNum    int16
	TypeID    uint32
	TypMod    int32
	Collation uint32
}

// ParseVarNode reads the node text produced by NodeCodec.Encode or by
// PostgreSQL's nodeToString. Unknown fields are skipped.
func ParseVarNode(text string) (*VarNode, error) {
	s := strings.TrimSpace(text)
	body, ok := strings.CutPrefix(s, "{VAR")
	if !ok || !strings.HasSuffix(body, "}") {
		return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "column node %q is not a VAR node", text)
	}
	body = body[:len(body)-1]
	if body != "" && !unicode.IsSpace(rune(body[0])) {
		return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "column node %q is not a VAR node", text)
	}
	fields := strings.Fields(body)
	if len(fields)%2 != 0 {
		return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "column node %q is malformed", text)
	}

	v := &VarNode{}
	seen := false
	for i := 0; i < len(fields); i += 2 {
		name, value := fields[i], fields[i+1]
		if !strings.HasPrefix(name, ":") {
			return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "column node %q: expected field name, got %q", text, name)
		}

		var err error
		switch name {
		case ":varattno":
			var n int64
			n, err = strconv.ParseInt(value, 10, 16)
			v.AttNum = int16(n)
			seen = true
		case ":vartype":
			var n uint64
			n, err = strconv.ParseUint(value, 10, 32)
			v.TypeID = uint32(n)
		case ":vartypmod":
			var n int64
			n, err = strconv.ParseInt(value, 10, 32)
			v.TypMod = int32(n)
		case ":varcollid":
			var n uint64
			n, err = strconv.ParseUint(value, 10, 32)
			v.Collation = uint32(n)
		}
		if err != nil {
			return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "column node %q: field %s: %v", text, name, err)
		}
	}
	if !seen {
		return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "column node %q has no varattno", text)
	}
	return v, nil
}

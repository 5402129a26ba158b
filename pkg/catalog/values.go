package catalog

import (
	"math/big"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
)

// varlena header size folded into PostgreSQL type modifiers
const typmodHeader = 4

// valueParser converts shard bound text to Go values with the canonical
// text decoding of the bound's type. pgtype.Map is not safe for
// concurrent use.
type valueParser struct {
	mu sync.Mutex
	m  *pgtype.Map
}

func newValueParser() *valueParser {
	return &valueParser{m: pgtype.NewMap()}
}

// parse returns text unchanged for types the map does not know. The type
// modifier is applied to varchar, bpchar and numeric values and ignored
// for every other type.
func (p *valueParser) parse(typeID uint32, typmod int32, text string) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.m.TypeForOID(typeID); !ok {
		return text, nil
	}
	var v any
	if err := p.m.Scan(typeID, pgtype.TextFormatCode, []byte(text), &v); err != nil {
		return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "invalid input %q for type %d: %v", text, typeID, err)
	}
	if typmod < typmodHeader {
		return v, nil
	}

	switch typeID {
	case pgtype.VarcharOID, pgtype.BPCharOID:
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		return applyLength(s, int(typmod-typmodHeader), typeID == pgtype.BPCharOID)
	case pgtype.NumericOID:
		n, ok := v.(pgtype.Numeric)
		if !ok {
			return v, nil
		}
		return applyPrecision(n, typmod-typmodHeader)
	default:
		return v, nil
	}
}

// applyLength follows the character type input rules: excess characters
// are dropped only when they are all spaces, and bpchar pads to length.
func applyLength(s string, maxLen int, pad bool) (any, error) {
	n := utf8.RuneCountInString(s)
	if n > maxLen {
		runes := []rune(s)
		if strings.TrimRight(string(runes[maxLen:]), " ") != "" {
			return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "value %q too long for length %d", s, maxLen)
		}
		return string(runes[:maxLen]), nil
	}
	if pad && n < maxLen {
		return s + strings.Repeat(" ", maxLen-n), nil
	}
	return s, nil
}

// applyPrecision rounds n to the typmod scale, half away from zero, and
// rejects values with more digits than the precision allows.
func applyPrecision(n pgtype.Numeric, mod int32) (any, error) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return n, nil
	}
	precision := (mod >> 16) & 0xffff
	scale := ((mod & 0x7ff) ^ 1024) - 1024

	i := new(big.Int).Set(n.Int)
	exp := n.Exp
	if shift := -scale - exp; shift > 0 {
		// more fractional digits than the scale keeps
		div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(shift)), nil)
		q, r := new(big.Int).QuoRem(i, div, new(big.Int))
		if r.Sign() != 0 && new(big.Int).Mul(new(big.Int).Abs(r), big.NewInt(2)).Cmp(div) >= 0 {
			q.Add(q, big.NewInt(int64(i.Sign())))
		}
		i = q
	} else if shift < 0 {
		i.Mul(i, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-shift)), nil))
	}
	exp = -scale

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
	if new(big.Int).Abs(i).Cmp(limit) >= 0 {
		return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "numeric value overflows precision %d, scale %d", precision, scale)
	}
	return pgtype.Numeric{Int: i, Exp: exp, Valid: true}, nil
}

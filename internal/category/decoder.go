// Package category decodes compound land-allocation category strings into
// their landclass, sub-basin, and water-use components.
//
// Category strings are delimiter-joined token sequences such as
// "Corn_AmazonBasin_IRR" or "biomass_grass_AmazonBasin_RFD". A small closed
// set of land types carries a two-token base name ("biomass_grass"); for
// those, the sub-basin abbreviation shifts one position right. The vocabulary
// is configurable so the parsing algorithm stays free of domain literals.
package category

import (
	"strings"

	"github.com/landex/landex/internal/errors"
)

// Default vocabulary matching current model output conventions.
const (
	DefaultDelimiter     = "_"
	DefaultIrrigatedName = "IRR"
	DefaultRainfedName   = "RFD"
)

// DefaultCompoundBases are land types whose first two tokens together form
// the base landclass name.
func DefaultCompoundBases() []string {
	return []string{"Tuber", "grass", "tree"}
}

// Vocabulary holds the closed token sets that drive category decoding.
type Vocabulary struct {
	// Delimiter joins the tokens of a category string
	Delimiter string

	// CompoundBases lists second tokens that belong to the base landclass
	// name rather than naming a sub-basin
	CompoundBases []string

	// IrrigatedName and RainfedName are the water-use marker tokens
	IrrigatedName string
	RainfedName   string
}

// DefaultVocabulary returns the vocabulary for current model outputs.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Delimiter:     DefaultDelimiter,
		CompoundBases: DefaultCompoundBases(),
		IrrigatedName: DefaultIrrigatedName,
		RainfedName:   DefaultRainfedName,
	}
}

// Decoded is the result of decomposing one category string.
type Decoded struct {
	// Landclass is the base land type name, without the use suffix
	Landclass string

	// SubBasin is the sub-basin abbreviation token
	SubBasin string

	// UseSuffix is "_IRR", "_RFD", or "" when no marker is present
	UseSuffix string
}

// SuffixedLandclass returns the landclass with the use suffix appended,
// the form used as the pivot key downstream.
func (d Decoded) SuffixedLandclass() string {
	return d.Landclass + d.UseSuffix
}

// Decoder decodes category strings against a fixed vocabulary.
type Decoder struct {
	vocab    Vocabulary
	compound map[string]struct{}
}

// NewDecoder creates a decoder for the given vocabulary. Zero-valued
// vocabulary fields fall back to the defaults.
func NewDecoder(vocab Vocabulary) *Decoder {
	if vocab.Delimiter == "" {
		vocab.Delimiter = DefaultDelimiter
	}
	if vocab.CompoundBases == nil {
		vocab.CompoundBases = DefaultCompoundBases()
	}
	if vocab.IrrigatedName == "" {
		vocab.IrrigatedName = DefaultIrrigatedName
	}
	if vocab.RainfedName == "" {
		vocab.RainfedName = DefaultRainfedName
	}

	compound := make(map[string]struct{}, len(vocab.CompoundBases))
	for _, b := range vocab.CompoundBases {
		compound[b] = struct{}{}
	}

	return &Decoder{vocab: vocab, compound: compound}
}

// Decode decomposes one category string. It is a pure function over the
// input: no state is read or written.
//
// Token layout: token[0] is the base land type; if token[1] is a compound
// base token the base name is token[0]+delim+token[1] and the sub-basin
// abbreviation is token[2], otherwise the sub-basin abbreviation is token[1].
// A water-use marker anywhere in the sequence sets the suffix, irrigated
// taking precedence over rainfed.
func (d *Decoder) Decode(category string) (Decoded, error) {
	tokens := strings.Split(category, d.vocab.Delimiter)

	basinIdx := 1
	landclass := tokens[0]
	if len(tokens) > 1 {
		if _, ok := d.compound[tokens[1]]; ok {
			landclass = tokens[0] + d.vocab.Delimiter + tokens[1]
			basinIdx = 2
		}
	}

	if len(tokens) <= basinIdx {
		return Decoded{}, errors.Newf(errors.ErrCategoryDecode, errors.CodeMalformedCategory,
			"category %q has %d tokens, need at least %d", category, len(tokens), basinIdx+1)
	}

	return Decoded{
		Landclass: landclass,
		SubBasin:  tokens[basinIdx],
		UseSuffix: d.useSuffix(tokens),
	}, nil
}

// useSuffix scans all tokens for a water-use marker.
func (d *Decoder) useSuffix(tokens []string) string {
	irr, rfd := false, false
	for _, tok := range tokens {
		switch tok {
		case d.vocab.IrrigatedName:
			irr = true
		case d.vocab.RainfedName:
			rfd = true
		}
	}
	switch {
	case irr:
		return d.vocab.Delimiter + d.vocab.IrrigatedName
	case rfd:
		return d.vocab.Delimiter + d.vocab.RainfedName
	default:
		return ""
	}
}

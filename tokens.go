package tokenmap

import (
	"fmt"
	"math/big"

	"github.com/gocql/gocql"
)

// protoVersion is the native protocol version of the encoded token lists, lengths are 4 bytes wide
const protoVersion = 4

// tokenListType is the list<varint> type the tokens of a host are encoded with
var tokenListType = gocql.CollectionType{
	NativeType: gocql.NewNativeType(protoVersion, gocql.TypeList, ""),
	Elem:       gocql.NewNativeType(protoVersion, gocql.TypeVarint, ""),
}

// DecodeTokens decodes a list<varint> value into the textual form of each token
func DecodeTokens(data []byte) (tokens []string, err error) {
	// a truncated payload can make the decoder index past the end
	defer func() {
		if r := recover(); r != nil {
			tokens, err = nil, fmt.Errorf("decode tokens: %v", r)
		}
	}()

	var values []big.Int
	if err := gocql.Unmarshal(tokenListType, data, &values); err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}
	tokens = make([]string, 0, len(values))
	for i := range values {
		tokens = append(tokens, values[i].String())
	}
	return tokens, nil
}

// EncodeTokens encodes tokens in their textual form into a list<varint> value
func EncodeTokens(tokens []string) ([]byte, error) {
	values := make([]*big.Int, 0, len(tokens))
	for _, token := range tokens {
		v, ok := new(big.Int).SetString(token, 10)
		if !ok {
			return nil, fmt.Errorf("encode tokens: %q is not a decimal integer", token)
		}
		values = append(values, v)
	}
	return gocql.Marshal(tokenListType, values)
}

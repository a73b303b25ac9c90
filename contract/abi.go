package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// AnonymousDataABIJSON is the interface of the AnonymousData contract. The
// contract feeds its storedHash as the single public signal to the Groth16
// verifier it was deployed with.
const AnonymousDataABIJSON = `[
  {"type":"function","name":"setHash","stateMutability":"nonpayable",
   "inputs":[{"name":"_hash","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"storedHash","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"verifier","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"verifyKnowledge","stateMutability":"nonpayable",
   "inputs":[
     {"name":"a","type":"uint256[2]"},
     {"name":"b","type":"uint256[2][2]"},
     {"name":"c","type":"uint256[2]"}],
   "outputs":[{"name":"","type":"bool"}]}
]`

const (
	setHashMethod         = "setHash"
	storedHashMethod      = "storedHash"
	verifierMethod        = "verifier"
	verifyKnowledgeMethod = "verifyKnowledge"
)

// AnonymousDataABI is the parsed AnonymousDataABIJSON.
var AnonymousDataABI = mustParseABI(AnonymousDataABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

package activation

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"verifyme/internal/core/domain/user"
)

var codeSpace = big.NewInt(10000)

type CodeGenerator struct {
	random io.Reader
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{random: rand.Reader}
}

// GenerateActivationCode returns a uniformly distributed code from "0000" to "9999".
func (g *CodeGenerator) GenerateActivationCode() (user.ActivationCode, error) {
	n, err := rand.Int(g.random, codeSpace)
	if err != nil {
		return "", err
	}
	return user.ActivationCode(fmt.Sprintf("%04d", n.Int64())), nil
}

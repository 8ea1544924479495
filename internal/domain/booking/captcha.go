package booking

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	captchaMin = 1
	captchaMax = 10
)

// IntN returns a uniform integer in [0, n). *rand.Rand satisfies it.
type IntN interface {
	IntN(n int) int
}

// Captcha is an addition challenge shown before a booking is submitted.
type Captcha struct {
	Num1 int `json:"num1"`
	Num2 int `json:"num2"`
}

// NewCaptcha draws both operands from [1, 10]. A nil rng uses the global source.
func NewCaptcha(rng IntN) Captcha {
	draw := func() int {
		if rng == nil {
			return captchaMin + rand.IntN(captchaMax-captchaMin+1) //nolint:gosec // not security sensitive
		}
		return captchaMin + rng.IntN(captchaMax-captchaMin+1)
	}
	return Captcha{Num1: draw(), Num2: draw()}
}

// Question renders the challenge, e.g. "What is 3 + 7?".
func (c Captcha) Question() string {
	return fmt.Sprintf("What is %d + %d?", c.Num1, c.Num2)
}

// Verify reports whether answer is the sum of the operands.
func (c Captcha) Verify(answer string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	return err == nil && n == c.Num1+c.Num2
}

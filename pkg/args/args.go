package args

import (
	"fmt"

	"github.com/Rudd3r/hddimg/pkg/domain"
)

type StringValue struct {
	val string
	p   *string
	f   func(val string) (string, error)
}

func NewStringValueFunc(val string, p *string, f func(val string) (string, error)) *StringValue {
	*p = val
	return &StringValue{val: val, p: p, f: f}
}

func (s *StringValue) Set(val string) (err error) {
	s.val, err = s.f(val)
	return err
}
func (s *StringValue) Type() string {
	return "string"
}

func (s *StringValue) String() string { return s.val }

func NewDiskBytes(val int64, i *int64) *StringValue {
	*i = val
	var sizeStr string
	return NewStringValueFunc(domain.FormatSizeBytes(val), &sizeStr, func(s string) (string, error) {
		size, err := domain.ParseSizeBytes(s)
		if err != nil {
			return s, fmt.Errorf("unable to parse disk size, %w", err)
		}
		*i = size
		return s, nil
	})
}

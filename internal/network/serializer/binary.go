package serializer

import (
	"bytes"
	"reflect"

	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// BinarySerializer 使用 serde 的类型感知二进制格式编解码。
//
// 负载自带类型标识，因此 Unmarshal 的目标可以是具体类型，也可以是接口（如 *any）。
type BinarySerializer struct {
	ctx *serde.Context
}

var _ Serializer = (*BinarySerializer)(nil)

func NewBinarySerializer(ctx *serde.Context) *BinarySerializer {
	return &BinarySerializer{ctx: ctx}
}

// Context 返回底层的编解码上下文。
func (s *BinarySerializer) Context() *serde.Context { return s.ctx }

func (s *BinarySerializer) Marshal(v any) ([]byte, error) {
	return s.ctx.SerializeToBytes(v)
}

func (s *BinarySerializer) Unmarshal(data []byte, v any) error {
	dst := reflect.ValueOf(v)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return merr.WrapErrParameterInvalidMsg("serializer: Unmarshal target must be a non-nil pointer, got %T", v)
	}
	got, err := s.ctx.Deserialize(bytes.NewReader(data))
	if err != nil {
		return err
	}
	elem := dst.Elem()
	if got == nil {
		elem.SetZero()
		return nil
	}
	gv := reflect.ValueOf(got)
	if !gv.Type().AssignableTo(elem.Type()) {
		return merr.WrapErrUnsupportedType(gv.Type().String(), "not assignable to "+elem.Type().String())
	}
	elem.Set(gv)
	return nil
}

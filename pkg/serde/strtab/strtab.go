// Package strtab 实现跨端同步的字符串驻留表。
//
// 每个模块槽位拥有一张在启动时由字符串清单构建的只读表，另有一张运行期表（RuntimeSlot）
// 用于会话引导阶段显式注册的字符串。表只允许追加，下标在会话内永不复用。
package strtab

import (
	"maps"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/wire"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

const (
	// RuntimeSlot 为运行期注册字符串所在的槽位。
	RuntimeSlot uint8 = 0xff
	// HashSize 为表摘要的字节数（SHA3-512）。
	HashSize = 64
)

type snapshot struct {
	slots   [][]string
	hashes  [][HashSize]byte
	runtime []string
	// lookup 覆盖所有槽位，模块槽位优先于运行期槽位。
	lookup map[string]wire.InternedString
}

// Table 是字符串驻留表。读操作基于原子快照，无需加锁；写操作互斥并整体替换快照。
type Table struct {
	mu          sync.Mutex
	snap        atomic.Pointer[snapshot]
	runtimeHash atomic.Pointer[runtimeDigest]
}

// runtimeDigest 缓存某个快照的运行期表摘要。
type runtimeDigest struct {
	snap *snapshot
	sum  [HashSize]byte
}

func New() *Table {
	t := &Table{}
	t.snap.Store(&snapshot{lookup: make(map[string]wire.InternedString)})
	return t
}

func (t *Table) clone() *snapshot {
	old := t.snap.Load()
	return &snapshot{
		slots:   slices.Clone(old.slots),
		hashes:  slices.Clone(old.hashes),
		runtime: old.runtime,
		lookup:  maps.Clone(old.lookup),
	}
}

// AddSlot 为模块槽位 slot 构建字符串表。槽位必须按 1, 2, 3... 的顺序添加。
//
// 已出现在更早模块槽位中的字符串不会重复加入；摘要基于完整清单计算，与去重结果无关。
// 已在运行期槽位注册过的字符串会改由新槽位驻留：之后写出的引用指向模块槽位，
// 运行期槽位中的旧下标保持不变，仍可被 Resolve。
func (t *Table) AddSlot(slot int, manifest []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.clone()
	if slot != len(next.slots)+1 || slot > wire.MaxModuleSlot {
		return merr.WrapErrParameterInvalid(len(next.slots)+1, slot, "string table slots must be added in order")
	}

	forward := make([]string, 0, len(manifest))
	for _, s := range manifest {
		if s == "" {
			continue
		}
		if id, ok := next.lookup[s]; ok && id.Slot != RuntimeSlot {
			continue
		}
		if len(forward) > wire.MaxToken {
			return merr.WrapErrNotImplemented("more than 2^24 strings in one slot")
		}
		next.lookup[s] = wire.InternedString{Slot: uint8(slot), Index: uint32(len(forward))}
		forward = append(forward, s)
	}
	next.slots = append(next.slots, forward)
	next.hashes = append(next.hashes, hashManifest(manifest))
	t.snap.Store(next)

	log.Debug("serde string table built",
		log.FieldSlot(slot),
		zap.Int("manifest", len(manifest)),
		zap.Int("interned", len(forward)))
	return nil
}

func hashManifest(manifest []string) [HashSize]byte {
	h := sha3.New512()
	for _, s := range manifest {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	var out [HashSize]byte
	h.Sum(out[:0])
	return out
}

// Register 向运行期槽位注册尚未出现在任何表中的字符串，返回是否有新增。
// 运行期表最多容纳 2^24 个字符串，超出时整批拒绝。
func (t *Table) Register(strs []string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.snap.Load()
	fresh := freshStrings(old.lookup, nil, strs)
	if len(fresh) == 0 {
		return false, nil
	}
	if err := checkRuntimeLen(len(old.runtime) + len(fresh)); err != nil {
		return false, err
	}

	next := t.clone()
	next.runtime = append(slices.Clone(old.runtime), fresh...)
	for i, s := range fresh {
		next.lookup[s] = wire.InternedString{Slot: RuntimeSlot, Index: uint32(len(old.runtime) + i)}
	}
	t.snap.Store(next)

	log.Debug("serde runtime strings registered",
		zap.Int("added", len(fresh)),
		zap.Int("total", len(next.runtime)))
	return true, nil
}

// Adopt 以对端的运行期表 strs 为准重建本端运行期表：strs 按原顺序占据下标 0..len(strs)-1，
// 本端此前注册、但不在 strs 与模块槽位中的字符串依次排在其后。返回排在其后的字符串。
//
// 本端已有的运行期下标可能因此改变，只能在会话开始传输数据之前调用。
func (t *Table) Adopt(strs []string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.snap.Load()
	next := t.clone()
	for s, id := range next.lookup {
		if id.Slot == RuntimeSlot {
			delete(next.lookup, s)
		}
	}
	adopted := make(map[string]struct{}, len(strs))
	for _, s := range strs {
		adopted[s] = struct{}{}
	}
	extras := freshStrings(next.lookup, adopted, old.runtime)

	runtime := make([]string, 0, len(strs)+len(extras))
	runtime = append(append(runtime, strs...), extras...)
	if err := checkRuntimeLen(len(runtime)); err != nil {
		return nil, err
	}
	for i, s := range runtime {
		if _, ok := next.lookup[s]; ok || s == "" {
			continue
		}
		next.lookup[s] = wire.InternedString{Slot: RuntimeSlot, Index: uint32(i)}
	}
	next.runtime = runtime
	t.snap.Store(next)

	log.Debug("serde runtime strings adopted",
		zap.Int("adopted", len(strs)),
		zap.Int("kept", len(extras)))
	return extras, nil
}

// freshStrings 按出现顺序返回 strs 中既不在 lookup 也不在 skip 中的非空字符串，结果不含重复。
func freshStrings(lookup map[string]wire.InternedString, skip map[string]struct{}, strs []string) []string {
	fresh := make([]string, 0, len(strs))
	pending := make(map[string]struct{}, len(strs))
	for _, s := range strs {
		if s == "" {
			continue
		}
		if _, ok := lookup[s]; ok {
			continue
		}
		if _, ok := skip[s]; ok {
			continue
		}
		if _, ok := pending[s]; ok {
			continue
		}
		pending[s] = struct{}{}
		fresh = append(fresh, s)
	}
	return fresh
}

// maxRuntimeStrings 为运行期表的容量，下标需要装进 24 位。
var maxRuntimeStrings = wire.MaxToken + 1

func checkRuntimeLen(n int) error {
	if n > maxRuntimeStrings {
		return merr.WrapErrNotImplemented("more than 2^24 runtime strings", "total="+strconv.Itoa(n))
	}
	return nil
}

// Intern 查找 s 的驻留引用。
func (t *Table) Intern(s string) (wire.InternedString, bool) {
	id, ok := t.snap.Load().lookup[s]
	return id, ok
}

// Resolve 将驻留引用还原为字符串。
func (t *Table) Resolve(id wire.InternedString) (string, error) {
	snap := t.snap.Load()
	var table []string
	if id.Slot == RuntimeSlot {
		table = snap.runtime
	} else {
		slot := int(id.Slot)
		if slot < 1 || slot > len(snap.slots) {
			return "", merr.WrapErrMissingAssembly(slot, "resolve interned string")
		}
		table = snap.slots[slot-1]
	}
	if int(id.Index) >= len(table) {
		return "", merr.WrapErrMissingString(id.Slot, id.Index)
	}
	return table[id.Index], nil
}

// ContentHash 返回模块槽位 slot 的字符串清单摘要。
func (t *Table) ContentHash(slot int) ([HashSize]byte, error) {
	snap := t.snap.Load()
	if slot < 1 || slot > len(snap.hashes) {
		return [HashSize]byte{}, merr.WrapErrMissingAssembly(slot)
	}
	return snap.hashes[slot-1], nil
}

// Slots 返回已构建的模块槽位数。
func (t *Table) Slots() int {
	return len(t.snap.Load().slots)
}

// SlotLen 返回模块槽位 slot 中实际驻留的字符串数。
func (t *Table) SlotLen(slot int) int {
	snap := t.snap.Load()
	if slot < 1 || slot > len(snap.slots) {
		return 0
	}
	return len(snap.slots[slot-1])
}

// Strings 返回运行期字符串表的副本。
func (t *Table) Strings() []string {
	return slices.Clone(t.snap.Load().runtime)
}

// RuntimeHash 返回运行期字符串表的摘要，算法见 HashStrings。
// 结果按快照缓存，任何一次写操作都会使其失效。
func (t *Table) RuntimeHash() [HashSize]byte {
	snap := t.snap.Load()
	if d := t.runtimeHash.Load(); d != nil && d.snap == snap {
		return d.sum
	}
	out := HashStrings(snap.runtime)
	t.runtimeHash.Store(&runtimeDigest{snap: snap, sum: out})
	return out
}

// HashStrings 计算运行期字符串表的摘要：每个字符串之后追加 2 字节 0 作为分隔。
func HashStrings(strs []string) [HashSize]byte {
	h := sha3.New512()
	for _, s := range strs {
		h.Write([]byte(s))
		h.Write([]byte{0, 0})
	}
	var out [HashSize]byte
	h.Sum(out[:0])
	return out
}

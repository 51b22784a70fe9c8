// Package gamestate 定义服务端与客户端之间同步的实体状态消息。
//
// 这些类型是编解码器的主要载荷：实体组件的增删变化以及组件的当前状态。
package gamestate

import (
	"iter"
	"slices"
	"time"

	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
)

// ModuleName 为本模块在两端注册时使用的名字。
const ModuleName = "gamestate"

// Component 为实体组件，ComponentStates 中以判别字节区分具体实现。
type Component interface {
	ComponentName() string
}

// ComponentChanged 描述一次组件增删。
// 删除时 ComponentName 为 nil。
type ComponentChanged struct {
	Deleted       bool
	NetID         uint32
	ComponentName *string
}

// ComponentState 为某个组件的完整状态。
type ComponentState struct {
	NetID     uint32
	Component Component
}

// EntityState 为单个实体在一帧内的状态增量。
type EntityState struct {
	UID              uint64
	ComponentChanges []ComponentChanged
	ComponentStates  []ComponentState
}

// NewEntityState 创建实体状态，空列表统一为 nil。
func NewEntityState(uid uint64, changes []ComponentChanged, states []ComponentState) EntityState {
	if len(changes) == 0 {
		changes = nil
	}
	if len(states) == 0 {
		states = nil
	}
	return EntityState{UID: uid, ComponentChanges: changes, ComponentStates: states}
}

// Added 返回一条新增组件的变化记录。
func Added(netID uint32, name string) ComponentChanged {
	return ComponentChanged{NetID: netID, ComponentName: &name}
}

// Removed 返回一条删除组件的变化记录。
func Removed(netID uint32) ComponentChanged {
	return ComponentChanged{Deleted: true, NetID: netID}
}

type Transform struct {
	Position [3]float32
	Rotation float32
}

func (Transform) ComponentName() string { return "Transform" }

type Health struct {
	Current int32
	Max     int32
}

func (*Health) ComponentName() string { return "Health" }

type Collision struct {
	Radius float32
	Layers TagSet
}

func (Collision) ComponentName() string { return "Collision" }

type BallisticBullet struct {
	Owner     uint64
	Velocity  [3]float32
	SpawnedAt time.Time
	TTL       time.Duration
}

func (BallisticBullet) ComponentName() string { return "BallisticBullet" }

// TagSet 是一组有序去重的只读标签。
type TagSet struct {
	tags []string
}

// NewTagSet 从 seq 构建标签集合，重复标签只保留一个。
func NewTagSet(seq iter.Seq[string]) TagSet {
	tags := slices.Sorted(seq)
	return TagSet{tags: slices.Compact(tags)}
}

// Tags 是 NewTagSet 的便捷形式。
func Tags(tags ...string) TagSet {
	return NewTagSet(slices.Values(tags))
}

func (s TagSet) All() iter.Seq[string] {
	return slices.Values(s.tags)
}

func (s TagSet) Len() int { return len(s.tags) }

func (s TagSet) Has(tag string) bool {
	_, ok := slices.BinarySearch(s.tags, tag)
	return ok
}

// Snapshot 为一帧内全部实体的状态。
type Snapshot struct {
	Frame    uint64
	Entities map[uint64]EntityState
	Events   []any
}

// Module 返回实体状态消息所在的模块；两端必须以相同顺序注册。
func Module() *typeinfo.Module {
	m := typeinfo.NewModule(ModuleName)
	typeinfo.Register[Component](m)
	typeinfo.Register[ComponentChanged](m)
	typeinfo.Register[ComponentState](m)
	typeinfo.Register[EntityState](m)
	typeinfo.Register[Transform](m)
	typeinfo.Register[Health](m)
	typeinfo.Register[Collision](m)
	typeinfo.Register[BallisticBullet](m)
	typeinfo.Register[Snapshot](m)
	m.AddCollection(NewTagSet)
	m.AddStrings("Collidable", "Damageable", "Projectile", "Static")
	return m
}

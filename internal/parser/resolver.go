package parser

import (
	"strings"

	"sparehub/internal/model"
)

// MasterData 解析引用所需的主数据集合，只读输入
type MasterData struct {
	Items     []*model.MasterItem
	Machines  []*model.Machine
	Locations []*model.Location
}

// lookupFunc 单个查找策略：引用 -> 规范 ID，未命中返回空串
type lookupFunc func(ref string) string

// Resolver 实体引用解析器
//
// 源表格来自不同系统，同一备件/设备可能以主键、零件号、别名编码
// 或名称出现。解析按固定策略顺序进行，先命中先返回：
//  1. 主键精确匹配
//  2. 次级键精确匹配（零件号/别名编码，按实体类型）
//  3. 名称大小写不敏感匹配
//  4. 纯数字引用的去符号数字比对
type Resolver struct {
	itemChain     []lookupFunc
	machineChain  []lookupFunc
	locationChain []lookupFunc
}

// NewResolver 基于主数据快照创建解析器
func NewResolver(md MasterData) *Resolver {
	return &Resolver{
		itemChain:     buildItemChain(md.Items),
		machineChain:  buildMachineChain(md.Machines),
		locationChain: buildLocationChain(md.Locations),
	}
}

// ResolveItem 解析备件引用，未命中返回空串
func (r *Resolver) ResolveItem(ref string) string {
	return resolve(r.itemChain, ref)
}

// ResolveMachine 解析设备引用，未命中返回空串
func (r *Resolver) ResolveMachine(ref string) string {
	return resolve(r.machineChain, ref)
}

// ResolveLocation 解析站点引用，未命中返回空串
func (r *Resolver) ResolveLocation(ref string) string {
	return resolve(r.locationChain, ref)
}

func resolve(chain []lookupFunc, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	for _, lookup := range chain {
		if id := lookup(ref); id != "" {
			return id
		}
	}
	return ""
}

func buildItemChain(items []*model.MasterItem) []lookupFunc {
	byID := make(map[string]string, len(items))
	bySecondary := make(map[string]string)
	byName := make(map[string]string)
	byDigits := make(map[string]string)

	for _, it := range items {
		byID[it.ID] = it.ID
		for _, key := range []string{it.PartNumber, it.SecondID, it.ThirdID} {
			if key != "" {
				if _, taken := bySecondary[key]; !taken {
					bySecondary[key] = it.ID
				}
			}
		}
		for _, name := range []string{it.Name, it.FullName} {
			if name != "" {
				lower := strings.ToLower(name)
				if _, taken := byName[lower]; !taken {
					byName[lower] = it.ID
				}
			}
		}
		for _, key := range []string{it.ID, it.PartNumber} {
			if d := DigitsOnly(key); d != "" {
				if _, taken := byDigits[d]; !taken {
					byDigits[d] = it.ID
				}
			}
		}
	}

	return []lookupFunc{
		func(ref string) string { return byID[ref] },
		func(ref string) string { return bySecondary[ref] },
		func(ref string) string { return byName[strings.ToLower(ref)] },
		digitLookup(byDigits),
	}
}

func buildMachineChain(machines []*model.Machine) []lookupFunc {
	byID := make(map[string]string, len(machines))
	bySecondary := make(map[string]string)
	byCategory := make(map[string]string)
	byDigits := make(map[string]string)

	for _, m := range machines {
		byID[m.ID] = m.ID
		for _, key := range []string{m.ChassisNo, m.MachineLocalNo} {
			if key != "" {
				if _, taken := bySecondary[key]; !taken {
					bySecondary[key] = m.ID
				}
			}
		}
		if m.Category != "" {
			lower := strings.ToLower(m.Category)
			if _, taken := byCategory[lower]; !taken {
				byCategory[lower] = m.ID
			}
		}
		if d := DigitsOnly(m.ID); d != "" {
			if _, taken := byDigits[d]; !taken {
				byDigits[d] = m.ID
			}
		}
	}

	return []lookupFunc{
		func(ref string) string { return byID[ref] },
		func(ref string) string { return bySecondary[ref] },
		func(ref string) string { return byCategory[strings.ToLower(ref)] },
		digitLookup(byDigits),
	}
}

func buildLocationChain(locations []*model.Location) []lookupFunc {
	byID := make(map[string]string, len(locations))
	byName := make(map[string]string)
	byDigits := make(map[string]string)

	for _, l := range locations {
		byID[l.ID] = l.ID
		if l.Name != "" {
			lower := strings.ToLower(l.Name)
			if _, taken := byName[lower]; !taken {
				byName[lower] = l.ID
			}
		}
		if d := DigitsOnly(l.ID); d != "" {
			if _, taken := byDigits[d]; !taken {
				byDigits[d] = l.ID
			}
		}
	}

	return []lookupFunc{
		func(ref string) string { return byID[ref] },
		func(ref string) string { return byName[strings.ToLower(ref)] },
		digitLookup(byDigits),
	}
}

// digitLookup 纯数字引用比对：引用和候选键都剥离非数字字符后比较。
// 仅当引用本身剥离后非空才参与，避免把纯文本引用误配到数字键上。
func digitLookup(byDigits map[string]string) lookupFunc {
	return func(ref string) string {
		d := DigitsOnly(ref)
		if d == "" {
			return ""
		}
		return byDigits[d]
	}
}

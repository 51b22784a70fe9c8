// 本文件中的类型仅用于多态扇出上限的测试，数量与判别字节容量严格对应。

package serdetest

import "reflect"

// Variant 有 FanoutSize 个已知实现，用于验证多态判别字节的容量上限。
type Variant interface{ isVariant() }

type variantMarker struct{}

func (variantMarker) isVariant() {}

// FanoutSize 比判别字节可寻址的实现数多 1。
const FanoutSize = 251

type Variant000 struct{ variantMarker }
type Variant001 struct{ variantMarker }
type Variant002 struct{ variantMarker }
type Variant003 struct{ variantMarker }
type Variant004 struct{ variantMarker }
type Variant005 struct{ variantMarker }
type Variant006 struct{ variantMarker }
type Variant007 struct{ variantMarker }
type Variant008 struct{ variantMarker }
type Variant009 struct{ variantMarker }
type Variant010 struct{ variantMarker }
type Variant011 struct{ variantMarker }
type Variant012 struct{ variantMarker }
type Variant013 struct{ variantMarker }
type Variant014 struct{ variantMarker }
type Variant015 struct{ variantMarker }
type Variant016 struct{ variantMarker }
type Variant017 struct{ variantMarker }
type Variant018 struct{ variantMarker }
type Variant019 struct{ variantMarker }
type Variant020 struct{ variantMarker }
type Variant021 struct{ variantMarker }
type Variant022 struct{ variantMarker }
type Variant023 struct{ variantMarker }
type Variant024 struct{ variantMarker }
type Variant025 struct{ variantMarker }
type Variant026 struct{ variantMarker }
type Variant027 struct{ variantMarker }
type Variant028 struct{ variantMarker }
type Variant029 struct{ variantMarker }
type Variant030 struct{ variantMarker }
type Variant031 struct{ variantMarker }
type Variant032 struct{ variantMarker }
type Variant033 struct{ variantMarker }
type Variant034 struct{ variantMarker }
type Variant035 struct{ variantMarker }
type Variant036 struct{ variantMarker }
type Variant037 struct{ variantMarker }
type Variant038 struct{ variantMarker }
type Variant039 struct{ variantMarker }
type Variant040 struct{ variantMarker }
type Variant041 struct{ variantMarker }
type Variant042 struct{ variantMarker }
type Variant043 struct{ variantMarker }
type Variant044 struct{ variantMarker }
type Variant045 struct{ variantMarker }
type Variant046 struct{ variantMarker }
type Variant047 struct{ variantMarker }
type Variant048 struct{ variantMarker }
type Variant049 struct{ variantMarker }
type Variant050 struct{ variantMarker }
type Variant051 struct{ variantMarker }
type Variant052 struct{ variantMarker }
type Variant053 struct{ variantMarker }
type Variant054 struct{ variantMarker }
type Variant055 struct{ variantMarker }
type Variant056 struct{ variantMarker }
type Variant057 struct{ variantMarker }
type Variant058 struct{ variantMarker }
type Variant059 struct{ variantMarker }
type Variant060 struct{ variantMarker }
type Variant061 struct{ variantMarker }
type Variant062 struct{ variantMarker }
type Variant063 struct{ variantMarker }
type Variant064 struct{ variantMarker }
type Variant065 struct{ variantMarker }
type Variant066 struct{ variantMarker }
type Variant067 struct{ variantMarker }
type Variant068 struct{ variantMarker }
type Variant069 struct{ variantMarker }
type Variant070 struct{ variantMarker }
type Variant071 struct{ variantMarker }
type Variant072 struct{ variantMarker }
type Variant073 struct{ variantMarker }
type Variant074 struct{ variantMarker }
type Variant075 struct{ variantMarker }
type Variant076 struct{ variantMarker }
type Variant077 struct{ variantMarker }
type Variant078 struct{ variantMarker }
type Variant079 struct{ variantMarker }
type Variant080 struct{ variantMarker }
type Variant081 struct{ variantMarker }
type Variant082 struct{ variantMarker }
type Variant083 struct{ variantMarker }
type Variant084 struct{ variantMarker }
type Variant085 struct{ variantMarker }
type Variant086 struct{ variantMarker }
type Variant087 struct{ variantMarker }
type Variant088 struct{ variantMarker }
type Variant089 struct{ variantMarker }
type Variant090 struct{ variantMarker }
type Variant091 struct{ variantMarker }
type Variant092 struct{ variantMarker }
type Variant093 struct{ variantMarker }
type Variant094 struct{ variantMarker }
type Variant095 struct{ variantMarker }
type Variant096 struct{ variantMarker }
type Variant097 struct{ variantMarker }
type Variant098 struct{ variantMarker }
type Variant099 struct{ variantMarker }
type Variant100 struct{ variantMarker }
type Variant101 struct{ variantMarker }
type Variant102 struct{ variantMarker }
type Variant103 struct{ variantMarker }
type Variant104 struct{ variantMarker }
type Variant105 struct{ variantMarker }
type Variant106 struct{ variantMarker }
type Variant107 struct{ variantMarker }
type Variant108 struct{ variantMarker }
type Variant109 struct{ variantMarker }
type Variant110 struct{ variantMarker }
type Variant111 struct{ variantMarker }
type Variant112 struct{ variantMarker }
type Variant113 struct{ variantMarker }
type Variant114 struct{ variantMarker }
type Variant115 struct{ variantMarker }
type Variant116 struct{ variantMarker }
type Variant117 struct{ variantMarker }
type Variant118 struct{ variantMarker }
type Variant119 struct{ variantMarker }
type Variant120 struct{ variantMarker }
type Variant121 struct{ variantMarker }
type Variant122 struct{ variantMarker }
type Variant123 struct{ variantMarker }
type Variant124 struct{ variantMarker }
type Variant125 struct{ variantMarker }
type Variant126 struct{ variantMarker }
type Variant127 struct{ variantMarker }
type Variant128 struct{ variantMarker }
type Variant129 struct{ variantMarker }
type Variant130 struct{ variantMarker }
type Variant131 struct{ variantMarker }
type Variant132 struct{ variantMarker }
type Variant133 struct{ variantMarker }
type Variant134 struct{ variantMarker }
type Variant135 struct{ variantMarker }
type Variant136 struct{ variantMarker }
type Variant137 struct{ variantMarker }
type Variant138 struct{ variantMarker }
type Variant139 struct{ variantMarker }
type Variant140 struct{ variantMarker }
type Variant141 struct{ variantMarker }
type Variant142 struct{ variantMarker }
type Variant143 struct{ variantMarker }
type Variant144 struct{ variantMarker }
type Variant145 struct{ variantMarker }
type Variant146 struct{ variantMarker }
type Variant147 struct{ variantMarker }
type Variant148 struct{ variantMarker }
type Variant149 struct{ variantMarker }
type Variant150 struct{ variantMarker }
type Variant151 struct{ variantMarker }
type Variant152 struct{ variantMarker }
type Variant153 struct{ variantMarker }
type Variant154 struct{ variantMarker }
type Variant155 struct{ variantMarker }
type Variant156 struct{ variantMarker }
type Variant157 struct{ variantMarker }
type Variant158 struct{ variantMarker }
type Variant159 struct{ variantMarker }
type Variant160 struct{ variantMarker }
type Variant161 struct{ variantMarker }
type Variant162 struct{ variantMarker }
type Variant163 struct{ variantMarker }
type Variant164 struct{ variantMarker }
type Variant165 struct{ variantMarker }
type Variant166 struct{ variantMarker }
type Variant167 struct{ variantMarker }
type Variant168 struct{ variantMarker }
type Variant169 struct{ variantMarker }
type Variant170 struct{ variantMarker }
type Variant171 struct{ variantMarker }
type Variant172 struct{ variantMarker }
type Variant173 struct{ variantMarker }
type Variant174 struct{ variantMarker }
type Variant175 struct{ variantMarker }
type Variant176 struct{ variantMarker }
type Variant177 struct{ variantMarker }
type Variant178 struct{ variantMarker }
type Variant179 struct{ variantMarker }
type Variant180 struct{ variantMarker }
type Variant181 struct{ variantMarker }
type Variant182 struct{ variantMarker }
type Variant183 struct{ variantMarker }
type Variant184 struct{ variantMarker }
type Variant185 struct{ variantMarker }
type Variant186 struct{ variantMarker }
type Variant187 struct{ variantMarker }
type Variant188 struct{ variantMarker }
type Variant189 struct{ variantMarker }
type Variant190 struct{ variantMarker }
type Variant191 struct{ variantMarker }
type Variant192 struct{ variantMarker }
type Variant193 struct{ variantMarker }
type Variant194 struct{ variantMarker }
type Variant195 struct{ variantMarker }
type Variant196 struct{ variantMarker }
type Variant197 struct{ variantMarker }
type Variant198 struct{ variantMarker }
type Variant199 struct{ variantMarker }
type Variant200 struct{ variantMarker }
type Variant201 struct{ variantMarker }
type Variant202 struct{ variantMarker }
type Variant203 struct{ variantMarker }
type Variant204 struct{ variantMarker }
type Variant205 struct{ variantMarker }
type Variant206 struct{ variantMarker }
type Variant207 struct{ variantMarker }
type Variant208 struct{ variantMarker }
type Variant209 struct{ variantMarker }
type Variant210 struct{ variantMarker }
type Variant211 struct{ variantMarker }
type Variant212 struct{ variantMarker }
type Variant213 struct{ variantMarker }
type Variant214 struct{ variantMarker }
type Variant215 struct{ variantMarker }
type Variant216 struct{ variantMarker }
type Variant217 struct{ variantMarker }
type Variant218 struct{ variantMarker }
type Variant219 struct{ variantMarker }
type Variant220 struct{ variantMarker }
type Variant221 struct{ variantMarker }
type Variant222 struct{ variantMarker }
type Variant223 struct{ variantMarker }
type Variant224 struct{ variantMarker }
type Variant225 struct{ variantMarker }
type Variant226 struct{ variantMarker }
type Variant227 struct{ variantMarker }
type Variant228 struct{ variantMarker }
type Variant229 struct{ variantMarker }
type Variant230 struct{ variantMarker }
type Variant231 struct{ variantMarker }
type Variant232 struct{ variantMarker }
type Variant233 struct{ variantMarker }
type Variant234 struct{ variantMarker }
type Variant235 struct{ variantMarker }
type Variant236 struct{ variantMarker }
type Variant237 struct{ variantMarker }
type Variant238 struct{ variantMarker }
type Variant239 struct{ variantMarker }
type Variant240 struct{ variantMarker }
type Variant241 struct{ variantMarker }
type Variant242 struct{ variantMarker }
type Variant243 struct{ variantMarker }
type Variant244 struct{ variantMarker }
type Variant245 struct{ variantMarker }
type Variant246 struct{ variantMarker }
type Variant247 struct{ variantMarker }
type Variant248 struct{ variantMarker }
type Variant249 struct{ variantMarker }
type Variant250 struct{ variantMarker }

// FanoutTypes 按声明顺序返回全部实现类型。
func FanoutTypes() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[Variant000](),
		reflect.TypeFor[Variant001](),
		reflect.TypeFor[Variant002](),
		reflect.TypeFor[Variant003](),
		reflect.TypeFor[Variant004](),
		reflect.TypeFor[Variant005](),
		reflect.TypeFor[Variant006](),
		reflect.TypeFor[Variant007](),
		reflect.TypeFor[Variant008](),
		reflect.TypeFor[Variant009](),
		reflect.TypeFor[Variant010](),
		reflect.TypeFor[Variant011](),
		reflect.TypeFor[Variant012](),
		reflect.TypeFor[Variant013](),
		reflect.TypeFor[Variant014](),
		reflect.TypeFor[Variant015](),
		reflect.TypeFor[Variant016](),
		reflect.TypeFor[Variant017](),
		reflect.TypeFor[Variant018](),
		reflect.TypeFor[Variant019](),
		reflect.TypeFor[Variant020](),
		reflect.TypeFor[Variant021](),
		reflect.TypeFor[Variant022](),
		reflect.TypeFor[Variant023](),
		reflect.TypeFor[Variant024](),
		reflect.TypeFor[Variant025](),
		reflect.TypeFor[Variant026](),
		reflect.TypeFor[Variant027](),
		reflect.TypeFor[Variant028](),
		reflect.TypeFor[Variant029](),
		reflect.TypeFor[Variant030](),
		reflect.TypeFor[Variant031](),
		reflect.TypeFor[Variant032](),
		reflect.TypeFor[Variant033](),
		reflect.TypeFor[Variant034](),
		reflect.TypeFor[Variant035](),
		reflect.TypeFor[Variant036](),
		reflect.TypeFor[Variant037](),
		reflect.TypeFor[Variant038](),
		reflect.TypeFor[Variant039](),
		reflect.TypeFor[Variant040](),
		reflect.TypeFor[Variant041](),
		reflect.TypeFor[Variant042](),
		reflect.TypeFor[Variant043](),
		reflect.TypeFor[Variant044](),
		reflect.TypeFor[Variant045](),
		reflect.TypeFor[Variant046](),
		reflect.TypeFor[Variant047](),
		reflect.TypeFor[Variant048](),
		reflect.TypeFor[Variant049](),
		reflect.TypeFor[Variant050](),
		reflect.TypeFor[Variant051](),
		reflect.TypeFor[Variant052](),
		reflect.TypeFor[Variant053](),
		reflect.TypeFor[Variant054](),
		reflect.TypeFor[Variant055](),
		reflect.TypeFor[Variant056](),
		reflect.TypeFor[Variant057](),
		reflect.TypeFor[Variant058](),
		reflect.TypeFor[Variant059](),
		reflect.TypeFor[Variant060](),
		reflect.TypeFor[Variant061](),
		reflect.TypeFor[Variant062](),
		reflect.TypeFor[Variant063](),
		reflect.TypeFor[Variant064](),
		reflect.TypeFor[Variant065](),
		reflect.TypeFor[Variant066](),
		reflect.TypeFor[Variant067](),
		reflect.TypeFor[Variant068](),
		reflect.TypeFor[Variant069](),
		reflect.TypeFor[Variant070](),
		reflect.TypeFor[Variant071](),
		reflect.TypeFor[Variant072](),
		reflect.TypeFor[Variant073](),
		reflect.TypeFor[Variant074](),
		reflect.TypeFor[Variant075](),
		reflect.TypeFor[Variant076](),
		reflect.TypeFor[Variant077](),
		reflect.TypeFor[Variant078](),
		reflect.TypeFor[Variant079](),
		reflect.TypeFor[Variant080](),
		reflect.TypeFor[Variant081](),
		reflect.TypeFor[Variant082](),
		reflect.TypeFor[Variant083](),
		reflect.TypeFor[Variant084](),
		reflect.TypeFor[Variant085](),
		reflect.TypeFor[Variant086](),
		reflect.TypeFor[Variant087](),
		reflect.TypeFor[Variant088](),
		reflect.TypeFor[Variant089](),
		reflect.TypeFor[Variant090](),
		reflect.TypeFor[Variant091](),
		reflect.TypeFor[Variant092](),
		reflect.TypeFor[Variant093](),
		reflect.TypeFor[Variant094](),
		reflect.TypeFor[Variant095](),
		reflect.TypeFor[Variant096](),
		reflect.TypeFor[Variant097](),
		reflect.TypeFor[Variant098](),
		reflect.TypeFor[Variant099](),
		reflect.TypeFor[Variant100](),
		reflect.TypeFor[Variant101](),
		reflect.TypeFor[Variant102](),
		reflect.TypeFor[Variant103](),
		reflect.TypeFor[Variant104](),
		reflect.TypeFor[Variant105](),
		reflect.TypeFor[Variant106](),
		reflect.TypeFor[Variant107](),
		reflect.TypeFor[Variant108](),
		reflect.TypeFor[Variant109](),
		reflect.TypeFor[Variant110](),
		reflect.TypeFor[Variant111](),
		reflect.TypeFor[Variant112](),
		reflect.TypeFor[Variant113](),
		reflect.TypeFor[Variant114](),
		reflect.TypeFor[Variant115](),
		reflect.TypeFor[Variant116](),
		reflect.TypeFor[Variant117](),
		reflect.TypeFor[Variant118](),
		reflect.TypeFor[Variant119](),
		reflect.TypeFor[Variant120](),
		reflect.TypeFor[Variant121](),
		reflect.TypeFor[Variant122](),
		reflect.TypeFor[Variant123](),
		reflect.TypeFor[Variant124](),
		reflect.TypeFor[Variant125](),
		reflect.TypeFor[Variant126](),
		reflect.TypeFor[Variant127](),
		reflect.TypeFor[Variant128](),
		reflect.TypeFor[Variant129](),
		reflect.TypeFor[Variant130](),
		reflect.TypeFor[Variant131](),
		reflect.TypeFor[Variant132](),
		reflect.TypeFor[Variant133](),
		reflect.TypeFor[Variant134](),
		reflect.TypeFor[Variant135](),
		reflect.TypeFor[Variant136](),
		reflect.TypeFor[Variant137](),
		reflect.TypeFor[Variant138](),
		reflect.TypeFor[Variant139](),
		reflect.TypeFor[Variant140](),
		reflect.TypeFor[Variant141](),
		reflect.TypeFor[Variant142](),
		reflect.TypeFor[Variant143](),
		reflect.TypeFor[Variant144](),
		reflect.TypeFor[Variant145](),
		reflect.TypeFor[Variant146](),
		reflect.TypeFor[Variant147](),
		reflect.TypeFor[Variant148](),
		reflect.TypeFor[Variant149](),
		reflect.TypeFor[Variant150](),
		reflect.TypeFor[Variant151](),
		reflect.TypeFor[Variant152](),
		reflect.TypeFor[Variant153](),
		reflect.TypeFor[Variant154](),
		reflect.TypeFor[Variant155](),
		reflect.TypeFor[Variant156](),
		reflect.TypeFor[Variant157](),
		reflect.TypeFor[Variant158](),
		reflect.TypeFor[Variant159](),
		reflect.TypeFor[Variant160](),
		reflect.TypeFor[Variant161](),
		reflect.TypeFor[Variant162](),
		reflect.TypeFor[Variant163](),
		reflect.TypeFor[Variant164](),
		reflect.TypeFor[Variant165](),
		reflect.TypeFor[Variant166](),
		reflect.TypeFor[Variant167](),
		reflect.TypeFor[Variant168](),
		reflect.TypeFor[Variant169](),
		reflect.TypeFor[Variant170](),
		reflect.TypeFor[Variant171](),
		reflect.TypeFor[Variant172](),
		reflect.TypeFor[Variant173](),
		reflect.TypeFor[Variant174](),
		reflect.TypeFor[Variant175](),
		reflect.TypeFor[Variant176](),
		reflect.TypeFor[Variant177](),
		reflect.TypeFor[Variant178](),
		reflect.TypeFor[Variant179](),
		reflect.TypeFor[Variant180](),
		reflect.TypeFor[Variant181](),
		reflect.TypeFor[Variant182](),
		reflect.TypeFor[Variant183](),
		reflect.TypeFor[Variant184](),
		reflect.TypeFor[Variant185](),
		reflect.TypeFor[Variant186](),
		reflect.TypeFor[Variant187](),
		reflect.TypeFor[Variant188](),
		reflect.TypeFor[Variant189](),
		reflect.TypeFor[Variant190](),
		reflect.TypeFor[Variant191](),
		reflect.TypeFor[Variant192](),
		reflect.TypeFor[Variant193](),
		reflect.TypeFor[Variant194](),
		reflect.TypeFor[Variant195](),
		reflect.TypeFor[Variant196](),
		reflect.TypeFor[Variant197](),
		reflect.TypeFor[Variant198](),
		reflect.TypeFor[Variant199](),
		reflect.TypeFor[Variant200](),
		reflect.TypeFor[Variant201](),
		reflect.TypeFor[Variant202](),
		reflect.TypeFor[Variant203](),
		reflect.TypeFor[Variant204](),
		reflect.TypeFor[Variant205](),
		reflect.TypeFor[Variant206](),
		reflect.TypeFor[Variant207](),
		reflect.TypeFor[Variant208](),
		reflect.TypeFor[Variant209](),
		reflect.TypeFor[Variant210](),
		reflect.TypeFor[Variant211](),
		reflect.TypeFor[Variant212](),
		reflect.TypeFor[Variant213](),
		reflect.TypeFor[Variant214](),
		reflect.TypeFor[Variant215](),
		reflect.TypeFor[Variant216](),
		reflect.TypeFor[Variant217](),
		reflect.TypeFor[Variant218](),
		reflect.TypeFor[Variant219](),
		reflect.TypeFor[Variant220](),
		reflect.TypeFor[Variant221](),
		reflect.TypeFor[Variant222](),
		reflect.TypeFor[Variant223](),
		reflect.TypeFor[Variant224](),
		reflect.TypeFor[Variant225](),
		reflect.TypeFor[Variant226](),
		reflect.TypeFor[Variant227](),
		reflect.TypeFor[Variant228](),
		reflect.TypeFor[Variant229](),
		reflect.TypeFor[Variant230](),
		reflect.TypeFor[Variant231](),
		reflect.TypeFor[Variant232](),
		reflect.TypeFor[Variant233](),
		reflect.TypeFor[Variant234](),
		reflect.TypeFor[Variant235](),
		reflect.TypeFor[Variant236](),
		reflect.TypeFor[Variant237](),
		reflect.TypeFor[Variant238](),
		reflect.TypeFor[Variant239](),
		reflect.TypeFor[Variant240](),
		reflect.TypeFor[Variant241](),
		reflect.TypeFor[Variant242](),
		reflect.TypeFor[Variant243](),
		reflect.TypeFor[Variant244](),
		reflect.TypeFor[Variant245](),
		reflect.TypeFor[Variant246](),
		reflect.TypeFor[Variant247](),
		reflect.TypeFor[Variant248](),
		reflect.TypeFor[Variant249](),
		reflect.TypeFor[Variant250](),
	}
}

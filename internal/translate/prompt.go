package translate

import (
	"fmt"
	"strings"

	"github.com/vmunix/horizon/internal/llm"
)

const translateSystemPrompt = "你是游戏翻译专家。只提供你100%确定的官方中文译名，不确定的保留英文名。绝对不要混淆不同的游戏系列。"

// buildBatchPrompt renders the translation request for one batch of names.
func buildBatchPrompt(names []string) string {
	var list strings.Builder
	for i, name := range names {
		fmt.Fprintf(&list, "%d. %s\n", i+1, name)
	}

	return fmt.Sprintf(`我需要查找以下游戏的官方中文名。

游戏列表：
%s
请逐个分析每个游戏，返回 JSON 数组。每个元素包含：
- "en": 原英文名（必须与上面完全一致，直接复制）
- "cn": 官方中文名
- "sure": 布尔值，true 表示你100%%确定这是正确的官方译名，false 表示不确定

重要规则：
1. 只填写你100%%确定的官方中文译名
2. 如果你不确定、没听说过这个游戏、或者这个游戏没有中文名，cn 填英文名，sure 填 false
3. 不要猜测，不要自己翻译，宁可保留英文名也不要填错误的中文名
4. Tales 系列是"传说"系列，不是"异闻录"；Bayonetta 是"猎天使魔女"

示例：
[
  {"en": "The Legend of Zelda: Tears of the Kingdom", "cn": "塞尔达传说：王国之泪", "sure": true},
  {"en": "Some Unknown Indie Game", "cn": "Some Unknown Indie Game", "sure": false}
]

只返回 JSON 数组。`, list.String())
}

func decodeTranslations(content string, target *[]wireTranslation) error {
	return llm.DecodeJSON(content, target)
}

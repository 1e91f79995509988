package detail

import "fmt"

const systemPrompt = "你是一个游戏行业专家，精通游戏制作人员信息。请基于你的知识回答问题，用 JSON 格式返回。"

const responseFormat = `{
    "name": "游戏的规范名称",
    "directors": [{"name": "姓名", "known_for": ["代表作1", "代表作2"]}],
    "writers": [{"name": "姓名", "known_for": ["代表作1"]}],
    "composers": [{"name": "姓名", "known_for": ["代表作1"]}],
    "producers": [{"name": "姓名", "known_for": ["代表作1"]}],
    "series": "系列名称",
    "related_games": ["同制作人的其他作品"],
    "highlights": ["亮点1", "亮点2"]
}`

// buildPrompt renders the enrichment request for one title. altName is an
// alternate title for the same game, used to disambiguate localized titles
// the model may not recognize.
func buildPrompt(name, altName string) string {
	known := "无"
	if altName != "" && altName != name {
		known = fmt.Sprintf("别名: %s", altName)
	}

	nameHint := ""
	if !containsHan(name) {
		nameHint = fmt.Sprintf("\n注意：《%s》是英文名，请先识别其对应的中文名（如有），然后基于你对该游戏的了解来回答。", name)
	}

	return fmt.Sprintf(`请根据你的知识，整理游戏《%s》的详细制作信息。%s

已知信息:
%s

请提供以下信息（如果能找到）:
1. 监督/导演 (Director) - 姓名及其代表作
2. 编剧/剧本 (Writer/Scenario) - 姓名及其代表作
3. 作曲/音乐 (Composer/Music) - 姓名及其代表作
4. 制作人 (Producer) - 姓名及其代表作
5. 所属游戏系列
6. 值得关注的亮点（如：某知名制作人的新作、某经典系列续作等）

请用以下 JSON 格式返回，找不到的字段留空数组:
%s

只返回 JSON，不要其他内容。如果完全找不到信息，返回空对象 {}。`, name, nameHint, known, responseFormat)
}

func containsHan(s string) bool {
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}

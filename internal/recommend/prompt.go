// ABOUTME: Builds the activity recommendation prompt from the local catalogue
// ABOUTME: Also parses numbered "**title**: description" suggestions out of replies

package recommend

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/harper/gachi/internal/content"
	"github.com/harper/gachi/internal/models"
)

const (
	noEvents = "현재 등록된 행사가 없습니다."
	noSpaces = "현재 등록된 문화 공간이 없습니다."

	systemMessage = "당신은 어르신들을 위한 친절하고 배려심 깊은 활동 추천 도우미입니다. 건강하고 즐거운 활동을 추천해주세요."

	// descriptionLimit keeps long programme blurbs out of the prompt.
	descriptionLimit = 120
)

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func eventLines(events []*models.CulturalEvent) string {
	if len(events) == 0 {
		return noEvents
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		desc := content.Truncate(content.PlainText(e.ProgramDescription), descriptionLimit)
		if desc == "" {
			desc = orDefault(e.EventType, "문화 행사")
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", e.Title, orDefault(e.Place, "장소 미정"), desc))
	}
	return strings.Join(lines, "\n")
}

func spaceLines(spaces []*models.CulturalSpace) string {
	if len(spaces) == 0 {
		return noSpaces
	}
	lines := make([]string, 0, len(spaces))
	for _, s := range spaces {
		desc := content.Truncate(content.PlainText(s.Description), descriptionLimit)
		if desc == "" {
			desc = orDefault(s.Category, "문화 공간")
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", s.Name, s.Address, desc))
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt renders the user message for district.
func BuildPrompt(district string, events []*models.CulturalEvent, spaces []*models.CulturalSpace) string {
	return fmt.Sprintf(`당신은 어르신들을 위한 친절한 활동 추천 도우미입니다. 
%s 지역의 문화 정보를 바탕으로, 오늘 하루 즐길 수 있는 활동을 3개 추천해주세요.

이용 가능한 문화 행사:
%s

이용 가능한 문화 공간:
%s

다음 형식으로 추천해주세요:
1. **활동명**: 간단한 설명 (30자 이하)
2. **활동명**: 간단한 설명 (30자 이하)
3. **활동명**: 간단한 설명 (30자 이하)

추천은 어르신들이 즐길 수 있고, 건강에 좋으며, 접근하기 쉬운 활동 위주로 해주세요.
가능하면 위의 실제 데이터에서 활동을 선택하되, 없다면 일반적인 건강하고 유익한 활동을 추천해주세요.
또한, 종료일이 임박한 행사를 우선적으로 추천해주세요.
그리고 반드시 활동에 대한 설명은 매우 짧게 작성해주세요.`, district, eventLines(events), spaceLines(spaces))
}

// Suggestion is one recommended activity.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var suggestionLine = regexp.MustCompile(`^\s*\d+[.)]\s*\*\*(.+?)\*\*\s*[:：]?\s*(.*)$`)

// ParseSuggestions extracts "N. **title**: description" lines in order.
func ParseSuggestions(text string) []Suggestion {
	var out []Suggestion
	for _, line := range strings.Split(text, "\n") {
		m := suggestionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, Suggestion{
			Title:       strings.TrimSpace(m[1]),
			Description: strings.TrimSpace(m[2]),
		})
	}
	return out
}

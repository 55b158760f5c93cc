package analysis

import "strings"

// Tags аналитические метки одной записи. Колонки верхних слоев не меняются,
// метки только добавляются.
type Tags struct {
	IsAI     bool   // L1: проект относится к AI
	IsLLM    bool   // L2: проект относится к 大模型
	LLMLayer string // L3: слой, только для IsLLM; иначе 未分类
}

// Tag помечает запись по тексту «название + ядро названия»
func Tag(projectName, coreName string) Tags {
	text := strings.TrimSpace(projectName + " " + coreName)
	t := Tags{
		IsAI:     isAI(text),
		IsLLM:    isLLM(text),
		LLMLayer: LayerUnclassified,
	}
	if t.IsLLM {
		t.LLMLayer = primaryLayer(text)
	}
	return t
}

// isAI L1: есть AI-ключевые слова; одиночное «人工智能» рядом с исключающими
// словами (ремонт, филиал и т.п.) не считается, если нет признаков L2
func isAI(text string) bool {
	if text == "" {
		return false
	}
	if !l1Keywords.MatchString(text) {
		return false
	}
	if strings.Contains(text, "人工智能") && l1ExcludePattern.MatchString(text) {
		if !l2Keywords.MatchString(text) &&
			!strings.Contains(text, "大模型") &&
			!strings.Contains(text, "平台") &&
			!strings.Contains(text, "建设") {
			return false
		}
	}
	return true
}

// isLLM L2: есть ключевые слова 大模型
func isLLM(text string) bool {
	return text != "" && l2Keywords.MatchString(text)
}

// primaryLayer L3: первый подходящий слой по приоритету 应用>平台>模型>算力
func primaryLayer(text string) string {
	if text == "" {
		return LayerUnclassified
	}
	for _, layer := range layerPriority {
		switch layer {
		case LayerApplication:
			if l3App.MatchString(text) {
				return LayerApplication
			}
		case LayerPlatform:
			if l3Platform.MatchString(text) {
				return LayerPlatform
			}
		case LayerModel:
			if l3Model.MatchString(text) {
				return LayerModel
			}
		case LayerCompute:
			if l3Compute.MatchString(text) {
				return LayerCompute
			}
		}
	}
	return LayerUnclassified
}

// ProjectPrimaryLayer сводный слой проекта по всем его записям:
// берется самый приоритетный из встретившихся
func ProjectPrimaryLayer(layers []string) string {
	for _, want := range layerPriority {
		for _, l := range layers {
			if l == want {
				return want
			}
		}
	}
	return LayerUnclassified
}

package analysis

import "regexp"

// Слои цепочки создания ценности для 大模型-проектов
const (
	LayerCompute      = "算力"
	LayerModel        = "模型"
	LayerPlatform     = "平台"
	LayerApplication  = "应用"
	LayerUnclassified = "未分类"
)

// layerPriority порядок проверки слоев: 应用 > 平台 > 模型 > 算力
var layerPriority = []string{LayerApplication, LayerPlatform, LayerModel, LayerCompute}

// l1Keywords L1: признаки AI-проекта
var l1Keywords = regexp.MustCompile(`人工智能|(?i:\bAI\b)|机器学习|深度学习|大模型|大语言模型|智能化|智能体|智算|算法模型|知识图谱|机器视觉|语音识别|自然语言`)

// l1ExcludePattern сочетания, при которых «人工智能» в названии не означает
// AI-проект: филиалы, городки, ремонт помещений и т.п.
var l1ExcludePattern = regexp.MustCompile(`装修|装饰|支行|分行|小镇|产业园区?物业|食堂|保洁|安保|绿化`)

// l2Keywords L2: признаки 大模型-проекта
var l2Keywords = regexp.MustCompile(`大模型|大语言模型|(?i:\bLLM\b)|(?i:\bGPT\b)|生成式|(?i:AIGC)|智能体|(?i:\bAgent\b)|通义|文心|盘古|星火|DeepSeek|deepseek`)

// l3Compute L3: слой вычислительной инфраструктуры
var l3Compute = regexp.MustCompile(`算力|智算中心|(?i:\bGPU\b)|显卡|服务器|机房|数据中心|国产化适配|一体机|算力租赁`)

// l3Model L3: слой моделей (обучение, дообучение, корпуса)
var l3Model = regexp.MustCompile(`模型训练|模型微调|微调|预训练|语料|训练数据|模型开发|模型优化|基础模型`)

// l3Platform L3: слой платформ и средних слоев
var l3Platform = regexp.MustCompile(`平台|中台|底座|基座|开发框架|模型服务|(?i:MaaS)|知识库系统`)

// l3App L3: прикладной слой
var l3App = regexp.MustCompile(`应用|助手|客服|问答|数字人|审核|审查|风控|营销|办公|写作|代码生成|质检|坐席`)

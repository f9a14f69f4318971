package repository

import (
	"context"
	"encoding/json"
	"time"

	"dreamtrace-go/internal/analysis"
	"dreamtrace-go/internal/model"
	"dreamtrace-go/pkg/log"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	dictionaryCacheKey = "dictionary:entries"
	dictionaryCacheTTL = time.Hour
)

// DictionaryRepository 提供词典条目的只读访问。条目在启动时入库，
// 运行期不再变更；加载失败时退回内置兜底条目，分析管道不会因此中断。
type DictionaryRepository interface {
	LoadAll(ctx context.Context) []model.DictionaryEntry
	FindByID(ctx context.Context, id string) (*model.DictionaryEntry, error)
	SeedDefaults() error
}

type dictionaryRepository struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewDictionaryRepository 创建一个新的 DictionaryRepository 实例。
func NewDictionaryRepository(db *gorm.DB, redisClient *redis.Client) DictionaryRepository {
	return &dictionaryRepository{db: db, redisClient: redisClient}
}

// LoadAll 返回全部词典条目。优先读 Redis 缓存，未命中时回源 MySQL
// 并回填缓存；两者都失败时返回内置兜底条目，从不返回空词典。
func (r *dictionaryRepository) LoadAll(ctx context.Context) []model.DictionaryEntry {
	if cached, err := r.redisClient.Get(ctx, dictionaryCacheKey).Result(); err == nil {
		var entries []model.DictionaryEntry
		if err := json.Unmarshal([]byte(cached), &entries); err == nil && len(entries) > 0 {
			return entries
		}
	}

	var entries []model.DictionaryEntry
	if err := r.db.Order("id").Find(&entries).Error; err != nil || len(entries) == 0 {
		if err != nil {
			log.Errorf("加载词典失败，使用内置兜底条目: %v", err)
		}
		return analysis.FallbackEntries()
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := r.redisClient.Set(ctx, dictionaryCacheKey, data, dictionaryCacheTTL).Err(); err != nil {
			log.Warnf("回填词典缓存失败: %v", err)
		}
	}
	return entries
}

// FindByID 根据 ID 查找一个词典条目。
func (r *dictionaryRepository) FindByID(ctx context.Context, id string) (*model.DictionaryEntry, error) {
	var entry model.DictionaryEntry
	err := r.db.Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SeedDefaults 在词典表为空时写入内置条目（幂等）。
func (r *dictionaryRepository) SeedDefaults() error {
	var count int64
	if err := r.db.Model(&model.DictionaryEntry{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Infof("词典已有 %d 个条目，跳过初始化导入", count)
		return nil
	}

	entries := defaultDictionary()
	if err := r.db.Create(&entries).Error; err != nil {
		return err
	}
	log.Infof("词典初始化完成，导入 %d 个条目", len(entries))
	return nil
}

// defaultDictionary 返回内置的梦境符号词典。
func defaultDictionary() []model.DictionaryEntry {
	return []model.DictionaryEntry{
		{
			ID: "1", Keyword: "飞翔", Short: "自由与超越", Icon: "🕊️", Category: "行为",
			Interpretation: "梦见飞翔通常象征着对自由的渴望，或者想要超越当前的限制和困难。如果飞得轻松，代表自信和掌控感；如果飞得费力，可能暗示生活中的阻力。",
			Keywords:       model.StringList{"飞翔", "飞", "飞行"},
			Emotions:       model.StringList{"joy", "freedom"},
		},
		{
			ID: "2", Keyword: "掉牙", Short: "焦虑与失去", Icon: "🦷", Category: "身体",
			Interpretation: "掉牙是常见的焦虑梦，通常与对衰老、失去力量、外貌焦虑或在某种情境下感到无能为力有关。也可能象征着成长过程中的阵痛。",
			Keywords:       model.StringList{"掉牙", "牙齿"},
			Emotions:       model.StringList{"anxiety", "loss"},
		},
		{
			ID: "3", Keyword: "被追赶", Short: "逃避与压力", Icon: "🏃", Category: "噩梦",
			Interpretation: "被追赶往往代表你在现实生活中正在逃避某个问题、责任或不愿面对的情绪。追赶者可能是你潜意识中恐惧的具象化。",
			Keywords:       model.StringList{"被追赶", "追赶", "被追", "chase"},
			Emotions:       model.StringList{"fear", "anxiety"},
			Questions:      model.StringList{"有没有什么你一直在回避的事？"},
			Comforts:       model.StringList{"你不是在逃，你是在自我保护。"},
			Steps:          model.StringList{"先写下最小的一步。"},
		},
		{
			ID: "4", Keyword: "蛇", Short: "智慧与威胁", Icon: "🐍", Category: "动物",
			Interpretation: "蛇是复杂的象征。它可能代表治愈、重生（蜕皮）和潜意识的智慧，也可能代表潜在的威胁、性压抑或生活中阴险的人。",
			Keywords:       model.StringList{"蛇"},
			Emotions:       model.StringList{"fear", "curiosity"},
		},
		{
			ID: "5", Keyword: "水", Short: "情绪与潜意识", Icon: "💧", Category: "自然",
			Interpretation: "水直接对应你的情绪状态。清澈平静的水代表内心宁静；浑浊汹涌的水代表情绪混乱或压抑。溺水可能暗示被情绪淹没。",
			Keywords:       model.StringList{"水", "海", "河", "溺水"},
			Emotions:       model.StringList{"calm", "overwhelmed"},
		},
		{
			ID: "6", Keyword: "考试", Short: "自我怀疑与评价", Icon: "📝", Category: "场景",
			Interpretation: "梦见未准备好考试通常反映了对失败的恐惧、对自身能力的怀疑，或者在现实中正面临某种形式的考验和评估。",
			Keywords:       model.StringList{"考试", "成绩", "测验", "exam"},
			Emotions:       model.StringList{"anxiety", "stress"},
			Questions:      model.StringList{"最近有让你担心的评估或任务吗？"},
			Comforts:       model.StringList{"很多人都会有这种紧张，慢慢来。"},
			Steps:          model.StringList{"拆小步，先做第一件事。"},
		},
		{
			ID: "7", Keyword: "迷路", Short: "困惑与方向", Icon: "🧭", Category: "场景",
			Interpretation: "迷路的梦象征着在生活中感到困惑、失去方向或不知道该如何做出选择。它可能提示你需要重新评估你的目标和价值观。",
			Keywords:       model.StringList{"迷路", "找不到"},
			Emotions:       model.StringList{"confusion", "anxiety"},
		},
		{
			ID: "8", Keyword: "坠落", Short: "失控与不安", Icon: "🌀", Category: "行为",
			Interpretation: "坠落的梦通常与失去控制、不安全感或对失败的恐惧有关。它可能是在提醒你要脚踏实地，或者是时候放手某些东西了。",
			Keywords:       model.StringList{"坠落", "掉", "掉下去"},
			Emotions:       model.StringList{"fear", "insecurity"},
		},
		{
			ID: "9", Keyword: "死亡", Short: "结束与新生", Icon: "🕯️", Category: "抽象",
			Interpretation: "梦见死亡并不一定预示着真实的死亡，它更多是象征着结束、转变和新的开始。旧的自我或生活方式正在消逝，为新的事物腾出空间。",
			Keywords:       model.StringList{"死亡", "死"},
			Emotions:       model.StringList{"sadness", "transition"},
		},
		{
			ID: "10", Keyword: "房子", Short: "自我的映射", Icon: "🏠", Category: "物品",
			Interpretation: "房子通常象征着做梦者自己。不同的房间代表着个性的不同方面。例如，地下室可能代表潜意识，阁楼代表智力或精神层面。",
			Keywords:       model.StringList{"房子", "家", "房间"},
			Emotions:       model.StringList{"security", "introspection"},
		},
		{
			ID: "11", Keyword: "猫", Short: "直觉与独立", Icon: "🐱", Category: "动物",
			Interpretation: "猫通常象征着独立、直觉、女性力量或神秘感。梦见猫可能是在提示你关注自己的直觉或探索内心深处的一面。",
			Keywords:       model.StringList{"猫"},
			Emotions:       model.StringList{"curiosity", "calm"},
		},
		{
			ID: "12", Keyword: "裸体", Short: "脆弱与坦诚", Icon: "🫣", Category: "身体",
			Interpretation: "在公共场合裸体的梦通常反映了脆弱感、羞耻感或害怕被他人看穿的恐惧。它也可能象征着渴望真诚和坦率。",
			Keywords:       model.StringList{"裸体", "没穿衣服"},
			Emotions:       model.StringList{"shame", "vulnerability"},
		},
	}
}

package types

import (
	"fmt"
	"strings"
)

// QAPair 是一个待评估的问答对
type QAPair struct {
	Question string `json:"question"`        // 问题文本
	Answer   string `json:"answer"`          // 答案文本
	Topic    string `json:"topic,omitempty"` // 可选的主题名，通常由所属分组决定
}

// TopicGroup 是按主题分组的问答对集合，对应问答数据文件中的一个元素
type TopicGroup struct {
	Topic     string   `json:"topic"`      // 主题名
	SegmentID int      `json:"segment_id"` // 生成该组问答对时使用的文档分段ID
	QAPairs   []QAPair `json:"qa_pairs"`   // 问答对列表
}

// QAUnit 是展开后的单个问答单元，由 (TopicIndex, QAIndex) 唯一标识
type QAUnit struct {
	TopicIndex int    `json:"topicIndex"`
	QAIndex    int    `json:"qaIndex"`
	Topic      string `json:"topic"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// ID 返回问答单元的标识，格式为 "<topicIndex>_<qaIndex>"
func (u QAUnit) ID() string {
	return fmt.Sprintf("%d_%d", u.TopicIndex, u.QAIndex)
}

// Text 返回用于哈希与语义比对的合并文本：问题 + 空格 + 答案
func (u QAUnit) Text() string {
	return u.Question + " " + u.Answer
}

// TopicName 返回分组的主题名，主题为空时使用默认名称
func TopicName(group TopicGroup, topicIndex int) string {
	if name := strings.TrimSpace(group.Topic); name != "" {
		return name
	}
	return fmt.Sprintf("未命名主题_%d", topicIndex)
}

// FlattenQAGroups 将按主题分组的问答对展开为 QAUnit 列表，保持输入顺序
func FlattenQAGroups(groups []TopicGroup) []QAUnit {
	var units []QAUnit
	for topicIdx, group := range groups {
		topic := TopicName(group, topicIdx)
		for qaIdx, qa := range group.QAPairs {
			units = append(units, QAUnit{
				TopicIndex: topicIdx,
				QAIndex:    qaIdx,
				Topic:      topic,
				Question:   qa.Question,
				Answer:     qa.Answer,
			})
		}
	}
	return units
}

// CountQAPairs 返回所有分组中问答对的总数
func CountQAPairs(groups []TopicGroup) int {
	total := 0
	for _, group := range groups {
		total += len(group.QAPairs)
	}
	return total
}

package core

import "time"

type MemoryConfig interface {
	GetMessageCap() int
	GetActionItemCap() int
	GetDescriptionLimit() int
}

type AnswerConfig interface {
	GetLLMTimeout() time.Duration
	GetMaxOutputTokens() int
	GetPromptTokenBudget() int
}

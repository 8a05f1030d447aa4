package models

const (
	// ParagraphSeparator joins and splits paragraphs throughout the pipeline.
	ParagraphSeparator = "\n\n"

	// SentenceTerminators are the marks a sentence may end on.
	SentenceTerminators = "。！？"

	// DiffTypeMisread, DiffTypeSkipped and DiffTypeAdded are the allowed
	// values of SpokenDifference.Type.
	DiffTypeMisread = "misread"
	DiffTypeSkipped = "skipped"
	DiffTypeAdded   = "added"
)

var (
	CorrectionPromptTemplate = `以下の小説テキストを解析し、TTS（音声合成）が読み間違えそうな「人名」「地名」「特殊な用語」「文脈で読みが変わる漢字」を抽出してください。

対象外:
- カタカナ語 → TTSは正しく読める
- ひらがな語 → 変換不要
- 一般的な漢字（学園、魔法、転生、王子 等）→ TTSが正しく読める

ルール:
- キーは原文テキストに存在する漢字語句そのまま（2文字以上）
- 値はひらがなのみ（カタカナや漢字を含まない）

テキスト:
---
%s
---
出力は {"漢字語句": "ひらがなよみ"} のJSON形式のみにしてください。`

	DifferencePromptTemplate = `TTSが読み間違えた漢字語句だけを特定し、正しいひらがな読みを出力してください。
キーは読み間違えた漢字語句のみ（2〜10文字程度）、値はひらがなのみです。

読み間違い箇所（原文と音声認識結果の対）:
---
%s
---
周辺の原文:
---
%s
---
出力は {"漢字語句": "ひらがなよみ"} のJSON形式のみにしてください。`

	CorrectionSystemPrompt = "あなたはプロの小説校正者です。"
)

package formrules_test

import (
	fr "github.com/reoring/formrules"
)

// quizTree mirrors a quiz editor form: a cover and up to three questions,
// each with at least two answers that are either text or image based.
func quizTree() fr.Tree {
	answer := fr.Branch(
		fr.F("id", fr.Leaf(fr.Required())),
		fr.F("text", fr.Leaf(fr.DependOn(func(rc fr.ResolveContext) fr.Rule {
			if isText(rc.Parent) {
				return fr.Required()
			}
			return nil
		}))),
		fr.F("image", fr.Leaf(fr.DependOn(func(rc fr.ResolveContext) fr.Rule {
			if !isText(rc.Parent) {
				return fr.Required()
			}
			return nil
		}))),
	)
	question := fr.Branch(
		fr.F("id", fr.Leaf(fr.Required())),
		fr.F("text", fr.Leaf(fr.Required(), fr.MaxLength(500))),
		fr.F("answers", fr.Leaf(fr.MinLength(2), fr.ItemRules(answer))),
		fr.F("isText", fr.Leaf()),
	)
	return fr.Branch(
		fr.F("cover", fr.Branch(
			fr.F("header", fr.Leaf(fr.Required(), fr.MinLength(2), fr.MaxLength(400))),
		)),
		fr.F("questions", fr.Leaf(fr.MinLength(1), fr.MaxLength(3), fr.ItemRules(question))),
	)
}

func isText(obj any) bool {
	v, _ := fr.Lookup(obj, "isText")
	b, _ := v.(bool)
	return b
}

func validQuiz() map[string]any {
	return map[string]any{
		"cover": map[string]any{"header": "My header"},
		"questions": []any{
			map[string]any{
				"id":   "qthdpd",
				"text": "first question",
				"answers": []any{
					map[string]any{"id": "uoegv1", "text": "right", "image": ""},
					map[string]any{"id": "8ycxyj", "text": "wrong", "image": ""},
				},
				"isText": true,
			},
			map[string]any{
				"id":   "vraozi",
				"text": "second question",
				"answers": []any{
					map[string]any{"id": "nbfm2j", "text": "", "image": "https://cdn.example.com/media/45134/NORMAL"},
					map[string]any{"id": "cmwn2x", "text": "", "image": "https://cdn.example.com/media/45133/NORMAL"},
				},
				"isText": false,
			},
		},
	}
}

func invalidQuiz() map[string]any {
	return map[string]any{
		"cover": map[string]any{"header": ""},
		"questions": []any{
			map[string]any{
				"id":   "id1",
				"text": "",
				"answers": []any{
					map[string]any{"id": "", "text": "correct", "image": ""},
					map[string]any{"id": "id2", "text": "wrong", "image": ""},
				},
				"isText": true,
			},
			map[string]any{
				"id":   "id2",
				"text": "second question",
				"answers": []any{
					map[string]any{"id": "id3", "text": "", "image": "https://cdn.example.com/media/45134/NORMAL"},
					map[string]any{"id": "id4", "text": "", "image": "https://cdn.example.com/media/45133/NORMAL"},
				},
				"isText": false,
			},
		},
	}
}

func msgs(m ...string) []string {
	if m == nil {
		return []string{}
	}
	return m
}

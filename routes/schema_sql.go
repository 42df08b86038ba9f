package routes

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ngodesk/formflow/form"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadTemplate reads a full template tree by id or slug (exactly one of the
// two). Returns sql.ErrNoRows when no template matches.
func loadTemplate(ctx context.Context, db querier, id uuid.UUID, slug string) (*form.Template, error) {
	where, arg := "t.id = ?", any(id.String())
	if slug != "" {
		where, arg = "t.slug = ?", any(slug)
	}

	t := &form.Template{}
	var idStr string
	var sectionLocation sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT
			t.id, t.name, t.description, t.slug, t.is_public, t.section_location,
			(SELECT count(*) FROM submission sub WHERE sub.template_id = t.id)
		FROM form_template t
		WHERE `+where,
		arg,
	).Scan(&idStr, &t.Name, &t.Description, &t.Slug, &t.IsPublic, &sectionLocation, &t.SubmissionCount)
	if err != nil {
		return nil, err
	}
	t.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	t.SectionLocation = sectionLocation.String

	rows, err := db.QueryContext(ctx, `
		SELECT
			s.id, s.title, s.description, s.order_index,
			q.id, q.title, q.help_text, q.required, q.order_index, q.type_code, q.config
		FROM form_section s
		LEFT OUTER JOIN form_question q ON (q.section_id = s.id)
		WHERE s.template_id = ?
		ORDER BY s.order_index, q.order_index`,
		t.ID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cur *form.Section
	for rows.Next() {
		var (
			secID, secTitle, secDesc        string
			secOrder                        int
			qID, qTitle, qHelp, qType, qCfg sql.NullString
			qRequired                       sql.NullBool
			qOrder                          sql.NullInt64
		)
		err = rows.Scan(
			&secID, &secTitle, &secDesc, &secOrder,
			&qID, &qTitle, &qHelp, &qRequired, &qOrder, &qType, &qCfg,
		)
		if err != nil {
			return nil, err
		}

		if cur == nil || cur.ID.String() != secID {
			sid, err := uuid.Parse(secID)
			if err != nil {
				return nil, err
			}
			cur = &form.Section{
				ID:          sid,
				Title:       secTitle,
				Description: secDesc,
				OrderIndex:  secOrder,
			}
			t.Sections = append(t.Sections, cur)
		}

		if !qID.Valid {
			// section without questions
			continue
		}
		qid, err := uuid.Parse(qID.String)
		if err != nil {
			return nil, err
		}
		code := form.Code(qType.String)
		var cfg form.Config
		if code.Known() {
			cfg, err = form.DecodeConfig(code, []byte(qCfg.String))
			if err != nil {
				return nil, err
			}
		}
		cur.Questions = append(cur.Questions, &form.Question{
			ID:         qid,
			SectionID:  cur.ID,
			Title:      qTitle.String,
			HelpText:   qHelp.String,
			Required:   qRequired.Bool,
			OrderIndex: int(qOrder.Int64),
			Type:       code,
			Config:     cfg,
		})
	}
	return t, rows.Err()
}

// insertTemplateTree writes the template row plus every section and
// question inside one transaction.
func insertTemplateTree(ctx context.Context, tx *sql.Tx, t *form.Template) error {
	var sectionLocation any
	if t.SectionLocation != "" {
		sectionLocation = t.SectionLocation
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO form_template (id, name, description, slug, is_public, section_location)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Name, t.Description, t.Slug, t.IsPublic, sectionLocation,
	)
	if err != nil {
		return err
	}

	return insertSectionsAndQuestions(ctx, tx, t)
}

// insertSectionsAndQuestions writes a template's sections and questions,
// assuming the template row already exists.
func insertSectionsAndQuestions(ctx context.Context, tx *sql.Tx, t *form.Template) error {
	secStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO form_section (id, template_id, title, description, order_index)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer secStmt.Close()

	qStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO form_question (id, section_id, template_id, title, help_text, required, order_index, type_code, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer qStmt.Close()

	for _, s := range t.Sections {
		_, err = secStmt.ExecContext(ctx, s.ID.String(), t.ID.String(), s.Title, s.Description, s.OrderIndex)
		if err != nil {
			return err
		}
		for _, q := range s.Questions {
			cfgJson, err := form.EncodeConfig(q.Config)
			if err != nil {
				return err
			}
			_, err = qStmt.ExecContext(ctx,
				q.ID.String(), s.ID.String(), t.ID.String(),
				q.Title, q.HelpText, q.Required, q.OrderIndex,
				string(q.Type), string(cfgJson),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// deleteTemplateTree removes a template's sections and questions, keeping
// the template row itself for the caller to update or delete.
func deleteTemplateTree(ctx context.Context, tx *sql.Tx, templateID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM form_question WHERE template_id = ?`, templateID.String())
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM form_section WHERE template_id = ?`, templateID.String())
	return err
}

// encodeAnswer serializes an answer value for the answer table.
func encodeAnswer(v form.Value) (string, error) {
	raw, err := json.Marshal(form.Wire(v))
	return string(raw), err
}

// loadSubmissions reads a template's submissions plus their normalized
// answer rows, decoding each value per its question's type code.
func loadSubmissions(ctx context.Context, db querier, t *form.Template) ([]form.SubmissionRecord, []form.AnswerRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, respondent_name, respondent_email, submitted_at
		FROM submission
		WHERE template_id = ?
		ORDER BY submitted_at`,
		t.ID.String(),
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	subs := []form.SubmissionRecord{}
	for rows.Next() {
		var sub form.SubmissionRecord
		var idStr string
		err = rows.Scan(&idStr, &sub.RespondentName, &sub.RespondentEmail, &sub.SubmittedAt)
		if err != nil {
			return nil, nil, err
		}
		sub.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, nil, err
		}
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	answerRows, err := db.QueryContext(ctx, `
		SELECT a.submission_id, a.question_id, a.value
		FROM answer a
		INNER JOIN submission s ON (s.id = a.submission_id)
		WHERE s.template_id = ?`,
		t.ID.String(),
	)
	if err != nil {
		return nil, nil, err
	}
	defer answerRows.Close()

	answers := []form.AnswerRow{}
	for answerRows.Next() {
		var subID, qID, valueJson string
		if err = answerRows.Scan(&subID, &qID, &valueJson); err != nil {
			return nil, nil, err
		}
		row := form.AnswerRow{}
		if row.SubmissionID, err = uuid.Parse(subID); err != nil {
			return nil, nil, err
		}
		if row.QuestionID, err = uuid.Parse(qID); err != nil {
			return nil, nil, err
		}

		q := t.QuestionByID(row.QuestionID)
		if q == nil {
			// question no longer in the template, skip
			continue
		}
		var raw any
		if err = json.Unmarshal([]byte(valueJson), &raw); err != nil {
			return nil, nil, err
		}
		if row.Value, err = form.DecodeValue(q.Type, raw); err != nil {
			return nil, nil, err
		}
		answers = append(answers, row)
	}
	return subs, answers, answerRows.Err()
}

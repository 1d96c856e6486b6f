package postgres

const (
	querySchema = `
		CREATE TABLE IF NOT EXISTS meetings (
			id         TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			version    BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	queryCreateMeeting = `
		INSERT INTO meetings (id, doc, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	queryGetMeeting = `SELECT doc FROM meetings WHERE id = $1;`

	queryUpdateMeeting = `
		UPDATE meetings
		SET doc = $2, version = $3, updated_at = $4
		WHERE id = $1;
	`
)

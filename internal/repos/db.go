package repos

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	applog "github.com/jainjy/servo-sub017/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline collections/items if DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS collections(
  name TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Items keep their source order through position
CREATE TABLE IF NOT EXISTS items(
  collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
  id TEXT NOT NULL,
  position INTEGER NOT NULL,
  label TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price NUMERIC CHECK (price IS NULL OR price >= 0),
  tags_json TEXT NOT NULL DEFAULT '[]',
  attributes_json TEXT NOT NULL DEFAULT '{}',
  updated_at TEXT,
  PRIMARY KEY(collection, id)
);
CREATE INDEX IF NOT EXISTS idx_items_position ON items(collection, position);

-- Submission journal
CREATE TABLE IF NOT EXISTS submissions(
  id TEXT PRIMARY KEY,
  form TEXT NOT NULL,
  collection TEXT,
  item_id TEXT,
  session_id TEXT,
  status TEXT NOT NULL CHECK (status IN ('Succeeded','Failed')),
  message TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM collections`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed.catalog", zap.String("action", "seed"))

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO collections(name,title) VALUES
	  ('boutique-naturel','Boutique Naturel'),
	  ('bien-etre','Bien-être'),
	  ('digitalisation','Digitalisation Partenaires'),
	  ('art-commerce','Art & Commerce'),
	  ('formation-finance','Formation Finance'),
	  ('immobilier','Immobilier')`)

	tx.MustExec(`INSERT INTO items(collection,id,position,label,description,category,price,tags_json,attributes_json) VALUES
	  ('boutique-naturel','1',1,'Huile Essentielle de Lavande','Flacon 10 ml, apaisante','Aromathérapie',12.50,'["bio"]','{"rating":"4.8"}'),
	  ('boutique-naturel','2',2,'Tisane Détox','Mélange de plantes locales','Tisanes',7.00,'["bio","local"]','{"rating":"4.2"}'),
	  ('boutique-naturel','3',3,'Roller Stress Stop aux Plantes','Roll-on anti-stress','Soins Bien-être',9.90,'[]','{"rating":"4.5"}'),
	  ('boutique-naturel','4',4,'Baume Massage Arnica','Baume chauffant','Soins Bien-être',18.00,'["massage"]','{"rating":"4.0"}'),
	  ('bien-etre','svc-1',1,'Massage Relaxant','Massage aux huiles','Massage',60,'[]','{"rating":"4.9","location":"Saint-Denis","duration":"1h"}'),
	  ('bien-etre','svc-2',2,'Séance de Sophrologie','Gestion du stress','Sophrologie',45,'[]','{"rating":"4.6","location":"Saint-Pierre","duration":"45min"}'),
	  ('bien-etre','svc-3',3,'Yoga en groupe','Cours tous niveaux','Yoga',15,'["groupe"]','{"rating":"4.3","location":"Saint-Paul","duration":"1h30"}'),
	  ('digitalisation','dp-1',1,'Web Agency Réunion','Sites vitrines et e-commerce','Développement Web',NULL,'["site","seo"]','{"rating":"4.7","location":"Saint-Denis"}'),
	  ('digitalisation','dp-2',2,'Cloud & Co','Migration et hébergement','Cloud',NULL,'["cloud"]','{"rating":"4.4","location":"Le Port"}'),
	  ('art-commerce','art-1',1,'Toile Lagon Bleu','Acrylique 60x80','Peinture',350,'["original"]','{"rating":"5.0"}'),
	  ('art-commerce','art-2',2,'Vase en Terre Cuite','Poterie artisanale','Artisanat',45,'["fait main"]','{"rating":"4.5"}'),
	  ('formation-finance','fm-1',1,'Initiation à la Bourse','Comprendre les marchés','Investissement',199,'[]','{"duration":"2 jours","rating":"4.6"}'),
	  ('formation-finance','fm-2',2,'Créer son Budget','Gestion de budget personnel','Budget',0,'["gratuit"]','{"duration":"3h","rating":"4.1"}'),
	  ('immobilier','re-1',1,'Villa T4 avec piscine','Vue mer, 120 m2','Vente',450000,'["piscine"]','{"location":"Saint-Gilles"}'),
	  ('immobilier','re-2',2,'Appartement T2','Centre-ville, 45 m2','Location',750,'[]','{"location":"Saint-Denis"}')`)

	return tx.Commit()
}

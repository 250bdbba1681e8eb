// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gorse-io/reviewsim/dataset"
	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

type SQLDriver int

const (
	MySQL SQLDriver = iota
	Postgres
	SQLite
)

// SQLReview is the row of the reviews table. Rows are loaded in the order of Id.
type SQLReview struct {
	Id     int64   `gorm:"column:id;primaryKey;autoIncrement"`
	UserId string  `gorm:"column:user_id;type:varchar(256);not null;index"`
	ItemId string  `gorm:"column:item_id;type:varchar(256);not null;index"`
	Review *string `gorm:"column:review;type:text"`
}

// SQLSource is a review source backed by MySQL, PostgreSQL or SQLite.
type SQLSource struct {
	TablePrefix
	driver SQLDriver
	client *sql.DB
	gormDB *gorm.DB
}

// OpenSQL connects to a SQL database.
func OpenSQL(path, tablePrefix string) (*SQLSource, error) {
	var err error
	source := &SQLSource{TablePrefix: TablePrefix(tablePrefix)}
	switch {
	case strings.HasPrefix(path, MySQLPrefix):
		name := path[len(MySQLPrefix):]
		if name, err = AppendMySQLParams(name, map[string]string{"parseTime": "true"}); err != nil {
			return nil, errors.Trace(err)
		}
		source.driver = MySQL
		if source.client, err = sql.Open("mysql", name); err != nil {
			return nil, errors.Trace(err)
		}
		source.gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: source.client}), NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
	case strings.HasPrefix(path, PostgresPrefix), strings.HasPrefix(path, PostgreSQLPrefix):
		source.driver = Postgres
		if source.client, err = sql.Open("postgres", path); err != nil {
			return nil, errors.Trace(err)
		}
		source.gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: source.client}), NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
	case strings.HasPrefix(path, SQLitePrefix):
		// append parameters
		if path, err = AppendURLParams(path, []lo.Tuple2[string, string]{
			{A: "_pragma", B: "busy_timeout(10000)"},
			{A: "_pragma", B: "journal_mode(wal)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		name := path[len(SQLitePrefix):]
		source.driver = SQLite
		if source.client, err = sql.Open("sqlite", name); err != nil {
			return nil, errors.Trace(err)
		}
		source.gormDB, err = gorm.Open(sqlite.Dialector{Conn: source.client}, NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
	default:
		return nil, errors.NotValidf("sql database %s", path)
	}
	return source, nil
}

func (s *SQLSource) Init() error {
	db := s.gormDB.Table(s.ReviewsTable())
	if s.driver == MySQL {
		db = db.Set("gorm:table_options", "ENGINE=InnoDB")
	}
	return errors.Trace(db.AutoMigrate(&SQLReview{}))
}

func (s *SQLSource) Close() error {
	return s.client.Close()
}

func (s *SQLSource) LoadReviews(ctx context.Context) ([]dataset.Review, error) {
	var rows []SQLReview
	err := s.gormDB.WithContext(ctx).Table(s.ReviewsTable()).Order("id").Find(&rows).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return lo.Map(rows, func(row SQLReview, _ int) dataset.Review {
		return dataset.Review{UserId: row.UserId, ItemId: row.ItemId, Text: row.Review}
	}), nil
}

func (s *SQLSource) BatchInsertReviews(ctx context.Context, reviews []dataset.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	rows := lo.Map(reviews, func(review dataset.Review, _ int) SQLReview {
		return SQLReview{UserId: review.UserId, ItemId: review.ItemId, Review: review.Text}
	})
	return errors.Trace(s.gormDB.WithContext(ctx).Table(s.ReviewsTable()).Create(&rows).Error)
}

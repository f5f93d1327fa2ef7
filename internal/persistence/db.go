// Package persistence provides SQLite-based campaign state storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/warmarch/internal/conflict"
	"github.com/talgya/warmarch/internal/engine"
	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

// settlementLister is implemented by resolvers that can enumerate their
// settlements, which lets a full save carry them along.
type settlementLister interface {
	All() []*world.Settlement
}

type settlementAdder interface {
	Add(*world.Settlement)
}

// DB wraps a SQLite connection for campaign state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS armies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		last_renamed_at TEXT,
		commander_json TEXT NOT NULL,
		owner_json TEXT NOT NULL,
		location_json TEXT NOT NULL,
		status INTEGER NOT NULL,
		morale REAL NOT NULL,
		supplies INTEGER NOT NULL,
		daily_supply_cost INTEGER NOT NULL,
		gold_upkeep INTEGER NOT NULL,
		gold INTEGER NOT NULL,
		units_json TEXT NOT NULL,
		supply_lines_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wars (
		id TEXT PRIMARY KEY,
		attacker_kingdom_id TEXT,
		defender_kingdom_id TEXT,
		attacker_json TEXT NOT NULL,
		defender_json TEXT NOT NULL,
		casus_belli INTEGER NOT NULL,
		status TEXT NOT NULL,
		attacker_score INTEGER NOT NULL,
		defender_score INTEGER NOT NULL,
		goals_json TEXT NOT NULL,
		participants_json TEXT NOT NULL,
		peace_terms TEXT NOT NULL,
		declared_tick INTEGER NOT NULL,
		ended_tick INTEGER
	);

	CREATE TABLE IF NOT EXISTS sieges (
		id TEXT PRIMARY KEY,
		war_id TEXT NOT NULL,
		army_id TEXT NOT NULL,
		target_json TEXT NOT NULL,
		status TEXT NOT NULL,
		fortification_level INTEGER NOT NULL,
		garrison_strength INTEGER NOT NULL,
		garrison_morale INTEGER NOT NULL,
		supplies_remaining INTEGER NOT NULL,
		days_besieged INTEGER NOT NULL,
		has_breach INTEGER NOT NULL,
		equipment_json TEXT NOT NULL,
		log_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battles (
		id TEXT PRIMARY KEY,
		war_id TEXT NOT NULL,
		location_json TEXT NOT NULL,
		battle_type INTEGER NOT NULL,
		status TEXT NOT NULL,
		phase TEXT NOT NULL,
		day INTEGER NOT NULL,
		attacker_troops_start INTEGER NOT NULL,
		defender_troops_start INTEGER NOT NULL,
		attacker_casualties INTEGER NOT NULL,
		defender_casualties INTEGER NOT NULL,
		terrain_json TEXT NOT NULL,
		weather_json TEXT NOT NULL,
		participants_json TEXT NOT NULL,
		log_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		reputation INTEGER NOT NULL,
		specialization INTEGER NOT NULL,
		army_id TEXT,
		hired_by_json TEXT NOT NULL,
		hire_cost INTEGER NOT NULL,
		daily_cost INTEGER NOT NULL,
		contract_days_remaining INTEGER NOT NULL,
		is_available INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settlements (
		kind INTEGER NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		treasury INTEGER NOT NULL,
		PRIMARY KEY (kind, id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS campaign_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_sieges_war ON sieges(war_id);
	CREATE INDEX IF NOT EXISTS idx_battles_war ON battles(war_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveArmies writes all armies to the database (full replace).
func (db *DB) SaveArmies(armies []*military.Army) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM armies"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO armies
		(id, name, last_renamed_at, commander_json, owner_json, location_json,
		 status, morale, supplies, daily_supply_cost, gold_upkeep, gold,
		 units_json, supply_lines_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range armies {
		commanderJSON, _ := json.Marshal(a.Commander)
		ownerJSON, _ := json.Marshal(a.Owner)
		locationJSON, _ := json.Marshal(a.Location)
		unitsJSON, _ := json.Marshal(a.Units)
		linesJSON, _ := json.Marshal(a.SupplyLines)

		var renamedAt *string
		if a.LastRenamedAt != nil {
			s := a.LastRenamedAt.Format(time.RFC3339Nano)
			renamedAt = &s
		}

		_, err := stmt.Exec(
			a.ID.String(), a.Name, renamedAt,
			string(commanderJSON), string(ownerJSON), string(locationJSON),
			a.Status, a.Morale, a.Supplies, a.DailySupplyCost, a.GoldUpkeep,
			a.Treasury.Balance(),
			string(unitsJSON), string(linesJSON),
		)
		if err != nil {
			return fmt.Errorf("insert army %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

type armyRow struct {
	ID              string   `db:"id"`
	Name            string   `db:"name"`
	LastRenamedAt   *string  `db:"last_renamed_at"`
	CommanderJSON   string   `db:"commander_json"`
	OwnerJSON       string   `db:"owner_json"`
	LocationJSON    string   `db:"location_json"`
	Status          uint8    `db:"status"`
	Morale          float64  `db:"morale"`
	Supplies        int      `db:"supplies"`
	DailySupplyCost int      `db:"daily_supply_cost"`
	GoldUpkeep      uint64   `db:"gold_upkeep"`
	Gold            uint64   `db:"gold"`
	UnitsJSON       string   `db:"units_json"`
	SupplyLinesJSON string   `db:"supply_lines_json"`
}

// LoadArmies reads all armies back.
func (db *DB) LoadArmies() ([]*military.Army, error) {
	var rows []armyRow
	if err := db.conn.Select(&rows, "SELECT * FROM armies"); err != nil {
		return nil, err
	}

	armies := make([]*military.Army, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("army id %q: %w", r.ID, err)
		}

		a := &military.Army{
			ID:              id,
			Name:            r.Name,
			Status:          military.ArmyStatus(r.Status),
			Morale:          r.Morale,
			Supplies:        r.Supplies,
			DailySupplyCost: r.DailySupplyCost,
			GoldUpkeep:      r.GoldUpkeep,
			Treasury:        military.NewTreasury(r.Gold),
		}

		if r.LastRenamedAt != nil {
			t, err := time.Parse(time.RFC3339Nano, *r.LastRenamedAt)
			if err != nil {
				return nil, fmt.Errorf("army %s renamed_at: %w", r.ID, err)
			}
			a.LastRenamedAt = &t
		}

		if err := json.Unmarshal([]byte(r.CommanderJSON), &a.Commander); err != nil {
			return nil, fmt.Errorf("army %s commander: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.OwnerJSON), &a.Owner); err != nil {
			return nil, fmt.Errorf("army %s owner: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.LocationJSON), &a.Location); err != nil {
			return nil, fmt.Errorf("army %s location: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.UnitsJSON), &a.Units); err != nil {
			return nil, fmt.Errorf("army %s units: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.SupplyLinesJSON), &a.SupplyLines); err != nil {
			return nil, fmt.Errorf("army %s supply lines: %w", r.ID, err)
		}

		a.RefreshComposition()
		armies = append(armies, a)
	}
	return armies, nil
}

// SaveWars writes all wars to the database (full replace).
func (db *DB) SaveWars(wars []*conflict.War) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM wars"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO wars
		(id, attacker_kingdom_id, defender_kingdom_id, attacker_json, defender_json,
		 casus_belli, status, attacker_score, defender_score,
		 goals_json, participants_json, peace_terms, declared_tick, ended_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, w := range wars {
		attackerJSON, _ := json.Marshal(w.Attacker)
		defenderJSON, _ := json.Marshal(w.Defender)
		goalsJSON, _ := json.Marshal(w.Goals)
		participantsJSON, _ := json.Marshal(w.Participants)

		_, err := stmt.Exec(
			w.ID.String(), uuidPtr(w.AttackerKingdomID), uuidPtr(w.DefenderKingdomID),
			string(attackerJSON), string(defenderJSON),
			w.CasusBelli, string(w.Status), w.AttackerScore, w.DefenderScore,
			string(goalsJSON), string(participantsJSON),
			w.PeaceTerms, w.DeclaredTick, w.EndedTick,
		)
		if err != nil {
			return fmt.Errorf("insert war %s: %w", w.ID, err)
		}
	}

	return tx.Commit()
}

type warRow struct {
	ID                string  `db:"id"`
	AttackerKingdomID *string `db:"attacker_kingdom_id"`
	DefenderKingdomID *string `db:"defender_kingdom_id"`
	AttackerJSON      string  `db:"attacker_json"`
	DefenderJSON      string  `db:"defender_json"`
	CasusBelli        uint8   `db:"casus_belli"`
	Status            string  `db:"status"`
	AttackerScore     int     `db:"attacker_score"`
	DefenderScore     int     `db:"defender_score"`
	GoalsJSON         string  `db:"goals_json"`
	ParticipantsJSON  string  `db:"participants_json"`
	PeaceTerms        string  `db:"peace_terms"`
	DeclaredTick      uint64  `db:"declared_tick"`
	EndedTick         *uint64 `db:"ended_tick"`
}

// LoadWars reads all wars back.
func (db *DB) LoadWars() ([]*conflict.War, error) {
	var rows []warRow
	if err := db.conn.Select(&rows, "SELECT * FROM wars"); err != nil {
		return nil, err
	}

	wars := make([]*conflict.War, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("war id %q: %w", r.ID, err)
		}

		w := &conflict.War{
			ID:            id,
			CasusBelli:    conflict.CasusBelli(r.CasusBelli),
			Status:        conflict.WarStatus(r.Status),
			AttackerScore: r.AttackerScore,
			DefenderScore: r.DefenderScore,
			PeaceTerms:    r.PeaceTerms,
			DeclaredTick:  r.DeclaredTick,
			EndedTick:     r.EndedTick,
		}

		if w.AttackerKingdomID, err = parseUUIDPtr(r.AttackerKingdomID); err != nil {
			return nil, fmt.Errorf("war %s attacker kingdom: %w", r.ID, err)
		}
		if w.DefenderKingdomID, err = parseUUIDPtr(r.DefenderKingdomID); err != nil {
			return nil, fmt.Errorf("war %s defender kingdom: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.AttackerJSON), &w.Attacker); err != nil {
			return nil, fmt.Errorf("war %s attacker: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.DefenderJSON), &w.Defender); err != nil {
			return nil, fmt.Errorf("war %s defender: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.GoalsJSON), &w.Goals); err != nil {
			return nil, fmt.Errorf("war %s goals: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.ParticipantsJSON), &w.Participants); err != nil {
			return nil, fmt.Errorf("war %s participants: %w", r.ID, err)
		}

		wars = append(wars, w)
	}
	return wars, nil
}

// SaveSieges writes all sieges to the database (full replace).
func (db *DB) SaveSieges(sieges []*conflict.Siege) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sieges"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO sieges
		(id, war_id, army_id, target_json, status, fortification_level,
		 garrison_strength, garrison_morale, supplies_remaining, days_besieged,
		 has_breach, equipment_json, log_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range sieges {
		targetJSON, _ := json.Marshal(s.Target)
		equipmentJSON, _ := json.Marshal(s.Equipment)
		logJSON, _ := json.Marshal(s.Log)

		_, err := stmt.Exec(
			s.ID.String(), s.WarID.String(), s.ArmyID.String(),
			string(targetJSON), string(s.Status),
			s.FortificationLevel, s.GarrisonStrength, s.GarrisonMorale,
			s.SuppliesRemaining, s.DaysBesieged, boolToInt(s.HasBreach),
			string(equipmentJSON), string(logJSON),
		)
		if err != nil {
			return fmt.Errorf("insert siege %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

type siegeRow struct {
	ID                 string `db:"id"`
	WarID              string `db:"war_id"`
	ArmyID             string `db:"army_id"`
	TargetJSON         string `db:"target_json"`
	Status             string `db:"status"`
	FortificationLevel int    `db:"fortification_level"`
	GarrisonStrength   int    `db:"garrison_strength"`
	GarrisonMorale     int    `db:"garrison_morale"`
	SuppliesRemaining  int    `db:"supplies_remaining"`
	DaysBesieged       int    `db:"days_besieged"`
	HasBreach          int    `db:"has_breach"`
	EquipmentJSON      string `db:"equipment_json"`
	LogJSON            string `db:"log_json"`
}

// LoadSieges reads all sieges back.
func (db *DB) LoadSieges() ([]*conflict.Siege, error) {
	var rows []siegeRow
	if err := db.conn.Select(&rows, "SELECT * FROM sieges"); err != nil {
		return nil, err
	}

	sieges := make([]*conflict.Siege, 0, len(rows))
	for _, r := range rows {
		s := &conflict.Siege{
			Status:             conflict.SiegeStatus(r.Status),
			FortificationLevel: r.FortificationLevel,
			GarrisonStrength:   r.GarrisonStrength,
			GarrisonMorale:     r.GarrisonMorale,
			SuppliesRemaining:  r.SuppliesRemaining,
			DaysBesieged:       r.DaysBesieged,
			HasBreach:          r.HasBreach != 0,
		}

		var err error
		if s.ID, err = uuid.Parse(r.ID); err != nil {
			return nil, fmt.Errorf("siege id %q: %w", r.ID, err)
		}
		if s.WarID, err = uuid.Parse(r.WarID); err != nil {
			return nil, fmt.Errorf("siege %s war id: %w", r.ID, err)
		}
		if s.ArmyID, err = uuid.Parse(r.ArmyID); err != nil {
			return nil, fmt.Errorf("siege %s army id: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.TargetJSON), &s.Target); err != nil {
			return nil, fmt.Errorf("siege %s target: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.EquipmentJSON), &s.Equipment); err != nil {
			return nil, fmt.Errorf("siege %s equipment: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.LogJSON), &s.Log); err != nil {
			return nil, fmt.Errorf("siege %s log: %w", r.ID, err)
		}

		sieges = append(sieges, s)
	}
	return sieges, nil
}

// SaveBattles writes all battles to the database (full replace).
func (db *DB) SaveBattles(battles []*conflict.Battle) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM battles"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO battles
		(id, war_id, location_json, battle_type, status, phase, day,
		 attacker_troops_start, defender_troops_start,
		 attacker_casualties, defender_casualties,
		 terrain_json, weather_json, participants_json, log_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range battles {
		locationJSON, _ := json.Marshal(b.Location)
		terrainJSON, _ := json.Marshal(b.Terrain)
		weatherJSON, _ := json.Marshal(b.Weather)
		participantsJSON, _ := json.Marshal(b.Participants)
		logJSON, _ := json.Marshal(b.Log)

		_, err := stmt.Exec(
			b.ID.String(), b.WarID.String(), string(locationJSON),
			b.Type, string(b.Status), string(b.Phase), b.Day,
			b.AttackerTroopsStart, b.DefenderTroopsStart,
			b.AttackerCasualties, b.DefenderCasualties,
			string(terrainJSON), string(weatherJSON),
			string(participantsJSON), string(logJSON),
		)
		if err != nil {
			return fmt.Errorf("insert battle %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

type battleRow struct {
	ID                  string `db:"id"`
	WarID               string `db:"war_id"`
	LocationJSON        string `db:"location_json"`
	BattleType          uint8  `db:"battle_type"`
	Status              string `db:"status"`
	Phase               string `db:"phase"`
	Day                 uint64 `db:"day"`
	AttackerTroopsStart int    `db:"attacker_troops_start"`
	DefenderTroopsStart int    `db:"defender_troops_start"`
	AttackerCasualties  int    `db:"attacker_casualties"`
	DefenderCasualties  int    `db:"defender_casualties"`
	TerrainJSON         string `db:"terrain_json"`
	WeatherJSON         string `db:"weather_json"`
	ParticipantsJSON    string `db:"participants_json"`
	LogJSON             string `db:"log_json"`
}

// LoadBattles reads all battles back.
func (db *DB) LoadBattles() ([]*conflict.Battle, error) {
	var rows []battleRow
	if err := db.conn.Select(&rows, "SELECT * FROM battles"); err != nil {
		return nil, err
	}

	battles := make([]*conflict.Battle, 0, len(rows))
	for _, r := range rows {
		b := &conflict.Battle{
			Type:                conflict.BattleType(r.BattleType),
			Status:              conflict.BattleStatus(r.Status),
			Phase:               conflict.BattlePhase(r.Phase),
			Day:                 r.Day,
			AttackerTroopsStart: r.AttackerTroopsStart,
			DefenderTroopsStart: r.DefenderTroopsStart,
			AttackerCasualties:  r.AttackerCasualties,
			DefenderCasualties:  r.DefenderCasualties,
		}

		var err error
		if b.ID, err = uuid.Parse(r.ID); err != nil {
			return nil, fmt.Errorf("battle id %q: %w", r.ID, err)
		}
		if b.WarID, err = uuid.Parse(r.WarID); err != nil {
			return nil, fmt.Errorf("battle %s war id: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.LocationJSON), &b.Location); err != nil {
			return nil, fmt.Errorf("battle %s location: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.TerrainJSON), &b.Terrain); err != nil {
			return nil, fmt.Errorf("battle %s terrain: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.WeatherJSON), &b.Weather); err != nil {
			return nil, fmt.Errorf("battle %s weather: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.ParticipantsJSON), &b.Participants); err != nil {
			return nil, fmt.Errorf("battle %s participants: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.LogJSON), &b.Log); err != nil {
			return nil, fmt.Errorf("battle %s log: %w", r.ID, err)
		}

		battles = append(battles, b)
	}
	return battles, nil
}

// SaveCompanies writes all mercenary companies to the database (full replace).
func (db *DB) SaveCompanies(companies []*military.MercenaryCompany) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM companies"); err != nil {
		return err
	}

	for _, m := range companies {
		hiredByJSON, _ := json.Marshal(m.HiredBy)

		var armyID *string
		if m.ArmyID != nil {
			s := m.ArmyID.String()
			armyID = &s
		}

		_, err := tx.Exec(`INSERT INTO companies
			(id, name, reputation, specialization, army_id, hired_by_json,
			 hire_cost, daily_cost, contract_days_remaining, is_available)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID.String(), m.Name, m.Reputation, m.Specialization, armyID,
			string(hiredByJSON), m.HireCost, m.DailyCost,
			m.ContractDaysRemaining, boolToInt(m.Available),
		)
		if err != nil {
			return fmt.Errorf("insert company %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

type companyRow struct {
	ID                    string  `db:"id"`
	Name                  string  `db:"name"`
	Reputation            uint8   `db:"reputation"`
	Specialization        uint8   `db:"specialization"`
	ArmyID                *string `db:"army_id"`
	HiredByJSON           string  `db:"hired_by_json"`
	HireCost              uint64  `db:"hire_cost"`
	DailyCost             uint64  `db:"daily_cost"`
	ContractDaysRemaining int     `db:"contract_days_remaining"`
	IsAvailable           int     `db:"is_available"`
}

// LoadCompanies reads all mercenary companies back.
func (db *DB) LoadCompanies() ([]*military.MercenaryCompany, error) {
	var rows []companyRow
	if err := db.conn.Select(&rows, "SELECT * FROM companies"); err != nil {
		return nil, err
	}

	companies := make([]*military.MercenaryCompany, 0, len(rows))
	for _, r := range rows {
		m := &military.MercenaryCompany{
			Name:                  r.Name,
			Reputation:            military.Reputation(r.Reputation),
			Specialization:        military.Specialization(r.Specialization),
			HireCost:              r.HireCost,
			DailyCost:             r.DailyCost,
			ContractDaysRemaining: r.ContractDaysRemaining,
			Available:             r.IsAvailable != 0,
		}

		var err error
		if m.ID, err = uuid.Parse(r.ID); err != nil {
			return nil, fmt.Errorf("company id %q: %w", r.ID, err)
		}
		if m.ArmyID, err = parseUUIDPtr(r.ArmyID); err != nil {
			return nil, fmt.Errorf("company %s army id: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.HiredByJSON), &m.HiredBy); err != nil {
			return nil, fmt.Errorf("company %s hired by: %w", r.ID, err)
		}

		companies = append(companies, m)
	}
	return companies, nil
}

// SaveSettlements writes all settlements to the database (full replace).
func (db *DB) SaveSettlements(settlements []*world.Settlement) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM settlements"); err != nil {
		return err
	}

	for _, s := range settlements {
		_, err := tx.Exec(
			"INSERT INTO settlements (kind, id, name, treasury) VALUES (?, ?, ?, ?)",
			s.Ref.Kind, s.Ref.ID.String(), s.Name, s.Treasury,
		)
		if err != nil {
			return fmt.Errorf("insert settlement %s: %w", s.Name, err)
		}
	}

	return tx.Commit()
}

type settlementRow struct {
	Kind     uint8  `db:"kind"`
	ID       string `db:"id"`
	Name     string `db:"name"`
	Treasury uint64 `db:"treasury"`
}

// LoadSettlements reads all settlements back.
func (db *DB) LoadSettlements() ([]*world.Settlement, error) {
	var rows []settlementRow
	if err := db.conn.Select(&rows, "SELECT * FROM settlements"); err != nil {
		return nil, err
	}

	settlements := make([]*world.Settlement, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("settlement id %q: %w", r.ID, err)
		}
		settlements = append(settlements, &world.Settlement{
			Ref:      world.SettlementRef{Kind: world.RefKind(r.Kind), ID: id},
			Name:     r.Name,
			Treasury: r.Treasury,
		})
	}
	return settlements, nil
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in campaign metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO campaign_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM campaign_meta WHERE key = ?", key)
	return value, err
}

// HasCampaignState reports whether a saved campaign exists.
func (db *DB) HasCampaignState() bool {
	_, err := db.GetMeta("last_tick")
	return err == nil
}

// SaveCampaign performs a full save of all campaign state.
func (db *DB) SaveCampaign(c *engine.Campaign) error {
	// Snapshots can fire from the admin API while the tick loop runs.
	c.RLock()
	defer c.RUnlock()

	slog.Info("saving campaign state",
		"wars", len(c.Wars), "armies", len(c.Armies),
		"sieges", len(c.Sieges), "battles", len(c.Battles))

	if err := db.SaveArmies(c.Armies); err != nil {
		return fmt.Errorf("save armies: %w", err)
	}
	if err := db.SaveWars(c.Wars); err != nil {
		return fmt.Errorf("save wars: %w", err)
	}
	if err := db.SaveSieges(c.Sieges); err != nil {
		return fmt.Errorf("save sieges: %w", err)
	}
	if err := db.SaveBattles(c.Battles); err != nil {
		return fmt.Errorf("save battles: %w", err)
	}
	if err := db.SaveCompanies(c.Companies); err != nil {
		return fmt.Errorf("save companies: %w", err)
	}
	if lister, ok := c.Resolver.(settlementLister); ok {
		settlements := lister.All()
		for _, s := range settlements {
			s.Treasury = c.Treasuries.Balance(s.Ref)
		}
		if err := db.SaveSettlements(settlements); err != nil {
			return fmt.Errorf("save settlements: %w", err)
		}
	}
	if err := db.SaveEvents(c.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", c.CurrentTick())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta("season", fmt.Sprintf("%d", c.CurrentSeason)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("campaign state saved")
	return nil
}

// LoadCampaign restores a full campaign into an empty aggregate with the
// given collaborators already injected.
func (db *DB) LoadCampaign(c *engine.Campaign) error {
	settlements, err := db.LoadSettlements()
	if err != nil {
		return fmt.Errorf("load settlements: %w", err)
	}
	for _, s := range settlements {
		if adder, ok := c.Resolver.(settlementAdder); ok {
			adder.Add(s)
		}
		if s.Treasury > 0 {
			c.Treasuries.Deposit(s.Ref, s.Treasury, "restored balance")
		}
	}

	armies, err := db.LoadArmies()
	if err != nil {
		return fmt.Errorf("load armies: %w", err)
	}
	for _, a := range armies {
		c.AddArmy(a)
	}

	wars, err := db.LoadWars()
	if err != nil {
		return fmt.Errorf("load wars: %w", err)
	}
	for _, w := range wars {
		c.AddWar(w)
	}

	if c.Sieges, err = db.LoadSieges(); err != nil {
		return fmt.Errorf("load sieges: %w", err)
	}
	if c.Battles, err = db.LoadBattles(); err != nil {
		return fmt.Errorf("load battles: %w", err)
	}
	if c.Companies, err = db.LoadCompanies(); err != nil {
		return fmt.Errorf("load companies: %w", err)
	}

	if tickStr, err := db.GetMeta("last_tick"); err == nil {
		var tick uint64
		if _, err := fmt.Sscanf(tickStr, "%d", &tick); err == nil {
			c.LastTick = tick
		}
	}
	if seasonStr, err := db.GetMeta("season"); err == nil {
		var season uint8
		if _, err := fmt.Sscanf(seasonStr, "%d", &season); err == nil {
			c.CurrentSeason = season
		}
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func uuidPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gmao-system/internal/entities"
	"gmao-system/internal/repositories"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/types"
)

// Фейки хранилища в памяти. Транзакций нет: fn вызывается с nil, поэтому ошибка
// посреди операции оставляет уже сделанные изменения, как в хранилище без транзакций.

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// ---------- таблицы ----------

type fakeTable[E any] struct {
	rows      map[uint64]E
	nextID    uint64
	id        func(*E) *uint64
	deleteErr error
}

func newFakeTable[E any](id func(*E) *uint64) *fakeTable[E] {
	return &fakeTable[E]{rows: make(map[uint64]E), id: id}
}

func (t *fakeTable[E]) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *fakeTable[E]) List(_ context.Context, _ types.Filter) ([]E, uint64, error) {
	res := make([]E, 0, len(t.rows))
	for _, id := range t.sortedIDs() {
		res = append(res, t.rows[id])
	}
	return res, uint64(len(res)), nil
}

func (t *fakeTable[E]) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*E, error) {
	e, ok := t.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (t *fakeTable[E]) FindByIDs(_ context.Context, _ pgx.Tx, ids []uint64) ([]E, error) {
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	res := make([]E, 0, len(ids))
	for _, id := range sorted {
		if e, ok := t.rows[id]; ok {
			res = append(res, e)
		}
	}
	return res, nil
}

func (t *fakeTable[E]) Create(_ context.Context, _ pgx.Tx, e E) (uint64, error) {
	t.nextID++
	*t.id(&e) = t.nextID
	t.rows[t.nextID] = e
	return t.nextID, nil
}

func (t *fakeTable[E]) Update(_ context.Context, _ pgx.Tx, e E) error {
	id := *t.id(&e)
	if _, ok := t.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	t.rows[id] = e
	return nil
}

func (t *fakeTable[E]) Delete(_ context.Context, _ pgx.Tx, id uint64) error {
	if t.deleteErr != nil {
		return t.deleteErr
	}
	if _, ok := t.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *fakeTable[E]) has(id uint64) bool {
	_, ok := t.rows[id]
	return ok
}

// ---------- оборудование ----------

type fakeEquipmentRepo struct {
	*fakeTable[entities.Equipment]
}

func newFakeEquipmentRepo() *fakeEquipmentRepo {
	return &fakeEquipmentRepo{newFakeTable(func(e *entities.Equipment) *uint64 { return &e.ID })}
}

func (r *fakeEquipmentRepo) GetAll(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	return r.List(ctx, filter)
}

func (r *fakeEquipmentRepo) FindBySerialOrName(_ context.Context, _ pgx.Tx, serial *string, name string) (*entities.Equipment, error) {
	for _, id := range r.sortedIDs() {
		e := r.rows[id]
		if serial != nil {
			if e.SerialNumber != nil && *e.SerialNumber == *serial {
				return &e, nil
			}
			continue
		}
		if strings.EqualFold(e.Name, name) {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeEquipmentRepo) UpdateDescription(_ context.Context, _ pgx.Tx, id uint64, description *string) error {
	e, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.Description = description
	r.rows[id] = e
	return nil
}

func (r *fakeEquipmentRepo) UpdateImage(_ context.Context, _ pgx.Tx, id uint64, imagePath *string) error {
	e, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.ImagePath = imagePath
	r.rows[id] = e
	return nil
}

func (r *fakeEquipmentRepo) GetStats(_ context.Context) (*entities.EquipmentStats, error) {
	stats := &entities.EquipmentStats{ByStatus: []entities.EquipmentStatusCount{}}
	counts := map[string]int64{}
	var health int
	for _, e := range r.rows {
		stats.Total++
		counts[e.Status]++
		health += e.HealthPercentage
	}
	for status, n := range counts {
		stats.ByStatus = append(stats.ByStatus, entities.EquipmentStatusCount{Status: status, Count: n})
	}
	if stats.Total > 0 {
		stats.AverageHealth = float64(health) / float64(stats.Total)
	}
	return stats, nil
}

// ---------- группы ----------

type fakeGroupRepo struct {
	*fakeTable[entities.EquipmentGroup]
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{newFakeTable(func(g *entities.EquipmentGroup) *uint64 { return &g.ID })}
}

func (r *fakeGroupRepo) GetDescriptions(_ context.Context, _ pgx.Tx) ([]string, error) {
	var res []string
	for _, id := range r.sortedIDs() {
		if d := r.rows[id].Description; d != nil && strings.TrimSpace(*d) != "" {
			res = append(res, *d)
		}
	}
	return res, nil
}

// ---------- документы и запчасти ----------

type fakeDocumentRepo struct {
	*fakeTable[entities.Document]
	junctions *repositories.Junctions
}

func (r *fakeDocumentRepo) project(d entities.Document) entities.Document {
	d.EquipmentIDs, _ = r.junctions.DocumentEquipments.GetGroupsFor(context.Background(), nil, d.ID)
	d.GroupIDs, _ = r.junctions.DocumentGroups.GetGroupsFor(context.Background(), nil, d.ID)
	return d
}

func (r *fakeDocumentRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Document, error) {
	d, err := r.fakeTable.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	projected := r.project(*d)
	return &projected, nil
}

func (r *fakeDocumentRepo) FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.Document, error) {
	docs, _ := r.fakeTable.FindByIDs(ctx, tx, ids)
	for i := range docs {
		docs[i] = r.project(docs[i])
	}
	return docs, nil
}

type fakePartRepo struct {
	*fakeTable[entities.Part]
	junctions *repositories.Junctions
}

func (r *fakePartRepo) project(p entities.Part) entities.Part {
	p.EquipmentIDs, _ = r.junctions.PartEquipments.GetGroupsFor(context.Background(), nil, p.ID)
	p.GroupIDs, _ = r.junctions.PartGroups.GetGroupsFor(context.Background(), nil, p.ID)
	return p
}

func (r *fakePartRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Part, error) {
	p, err := r.fakeTable.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	projected := r.project(*p)
	return &projected, nil
}

func (r *fakePartRepo) FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.Part, error) {
	parts, _ := r.fakeTable.FindByIDs(ctx, tx, ids)
	for i := range parts {
		parts[i] = r.project(parts[i])
	}
	return parts, nil
}

// ---------- вмешательства и история ----------

type fakeInterventionRepo struct {
	*fakeTable[entities.Intervention]
}

func (r *fakeInterventionRepo) DeleteByEquipmentID(_ context.Context, _ pgx.Tx, equipmentID uint64) (int64, error) {
	var n int64
	for id, i := range r.rows {
		if i.EquipmentID == equipmentID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

type fakeHistoryRepo struct {
	entries []entities.EquipmentHistory
	nextID  uint64
}

func (r *fakeHistoryRepo) Create(_ context.Context, _ pgx.Tx, entries []entities.EquipmentHistory) error {
	for _, e := range entries {
		r.nextID++
		e.ID = r.nextID
		e.ChangedAt = time.Now()
		r.entries = append(r.entries, e)
	}
	return nil
}

func (r *fakeHistoryRepo) FindByEquipmentID(_ context.Context, equipmentID uint64, limit, offset uint64) ([]entities.EquipmentHistory, uint64, error) {
	var all []entities.EquipmentHistory
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].EquipmentID == equipmentID {
			all = append(all, r.entries[i])
		}
	}
	total := uint64(len(all))
	if offset >= total {
		return []entities.EquipmentHistory{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *fakeHistoryRepo) DeleteByEquipmentID(_ context.Context, _ pgx.Tx, equipmentID uint64) (int64, error) {
	kept := r.entries[:0]
	var n int64
	for _, e := range r.entries {
		if e.EquipmentID == equipmentID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return n, nil
}

func (r *fakeHistoryRepo) countFor(equipmentID uint64) int {
	n := 0
	for _, e := range r.entries {
		if e.EquipmentID == equipmentID {
			n++
		}
	}
	return n
}

// ---------- связи ----------

type fakeJunction struct {
	relation repositories.Relation
	links    map[[2]uint64]struct{}
	// insertErr срабатывает после удаления старых связей, до вставки новых.
	insertErr error
}

func newFakeJunction(relation repositories.Relation) *fakeJunction {
	return &fakeJunction{relation: relation, links: make(map[[2]uint64]struct{})}
}

func (j *fakeJunction) Relation() repositories.Relation { return j.relation }

func sortedIDs(ids []uint64) []uint64 {
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}

func (j *fakeJunction) GetGroupsFor(_ context.Context, _ pgx.Tx, memberID uint64) ([]uint64, error) {
	res := []uint64{}
	for link := range j.links {
		if link[0] == memberID {
			res = append(res, link[1])
		}
	}
	return sortedIDs(res), nil
}

func (j *fakeJunction) GetMembersOf(_ context.Context, _ pgx.Tx, groupID uint64) ([]uint64, error) {
	res := []uint64{}
	for link := range j.links {
		if link[1] == groupID {
			res = append(res, link[0])
		}
	}
	return sortedIDs(res), nil
}

func (j *fakeJunction) ReplaceGroupsFor(ctx context.Context, tx pgx.Tx, memberID uint64, groupIDs []uint64) error {
	if _, err := j.RemoveMember(ctx, tx, memberID); err != nil {
		return err
	}
	if j.insertErr != nil {
		return j.insertErr
	}
	for _, id := range groupIDs {
		j.links[[2]uint64{memberID, id}] = struct{}{}
	}
	return nil
}

func (j *fakeJunction) ReplaceMembersOf(ctx context.Context, tx pgx.Tx, groupID uint64, memberIDs []uint64) error {
	if _, err := j.RemoveGroup(ctx, tx, groupID); err != nil {
		return err
	}
	if j.insertErr != nil {
		return j.insertErr
	}
	for _, id := range memberIDs {
		j.links[[2]uint64{id, groupID}] = struct{}{}
	}
	return nil
}

func (j *fakeJunction) RemoveMember(_ context.Context, _ pgx.Tx, memberID uint64) (int64, error) {
	var n int64
	for link := range j.links {
		if link[0] == memberID {
			delete(j.links, link)
			n++
		}
	}
	return n, nil
}

func (j *fakeJunction) RemoveGroup(_ context.Context, _ pgx.Tx, groupID uint64) (int64, error) {
	var n int64
	for link := range j.links {
		if link[1] == groupID {
			delete(j.links, link)
			n++
		}
	}
	return n, nil
}

func (j *fakeJunction) RemoveLink(_ context.Context, _ pgx.Tx, memberID, groupID uint64) error {
	delete(j.links, [2]uint64{memberID, groupID})
	return nil
}

func (j *fakeJunction) CountMembersOf(_ context.Context, _ pgx.Tx, groupID uint64, excludingMember uint64) (int, error) {
	n := 0
	for link := range j.links {
		if link[1] == groupID && link[0] != excludingMember {
			n++
		}
	}
	return n, nil
}

// ---------- файлы ----------

type fakeFileStorage struct {
	saved   []string
	deleted []string
	failOn  map[string]error
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{failOn: make(map[string]error)}
}

func (f *fakeFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	path := prefix + "/" + originalFileName
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeFileStorage) Delete(filePath string) error {
	if err, ok := f.failOn[filePath]; ok {
		return err
	}
	f.deleted = append(f.deleted, filePath)
	return nil
}

var errStorageDown = errors.New("хранилище недоступно")

// ---------- окружение ----------

type testEnv struct {
	equipments    *fakeEquipmentRepo
	groups        *fakeGroupRepo
	documents     *fakeDocumentRepo
	parts         *fakePartRepo
	interventions *fakeInterventionRepo
	history       *fakeHistoryRepo

	equipmentGroups    *fakeJunction
	documentGroups     *fakeJunction
	partGroups         *fakeJunction
	documentEquipments *fakeJunction
	partEquipments     *fakeJunction
	junctions          repositories.Junctions

	files *fakeFileStorage
	cache *BaseService

	membership *MembershipService
	deletion   *EquipmentDeletionService
	resources  *GroupResourceService
	equipment  *EquipmentService
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()
	env := &testEnv{
		equipments:         newFakeEquipmentRepo(),
		groups:             newFakeGroupRepo(),
		interventions:      &fakeInterventionRepo{newFakeTable(func(i *entities.Intervention) *uint64 { return &i.ID })},
		history:            &fakeHistoryRepo{},
		equipmentGroups:    newFakeJunction(repositories.EquipmentGroups),
		documentGroups:     newFakeJunction(repositories.DocumentGroups),
		partGroups:         newFakeJunction(repositories.PartGroups),
		documentEquipments: newFakeJunction(repositories.DocumentEquipments),
		partEquipments:     newFakeJunction(repositories.PartEquipments),
		files:              newFakeFileStorage(),
	}
	env.junctions = repositories.Junctions{
		EquipmentGroups:    env.equipmentGroups,
		DocumentGroups:     env.documentGroups,
		PartGroups:         env.partGroups,
		DocumentEquipments: env.documentEquipments,
		PartEquipments:     env.partEquipments,
	}
	env.documents = &fakeDocumentRepo{newFakeTable(func(d *entities.Document) *uint64 { return &d.ID }), &env.junctions}
	env.parts = &fakePartRepo{newFakeTable(func(p *entities.Part) *uint64 { return &p.ID }), &env.junctions}
	env.cache = NewBaseService(repositories.NewMemoryCacheRepository(128, time.Minute), time.Minute, logger)

	tx := fakeTxManager{}
	env.membership = NewMembershipService(tx, env.equipments, env.groups, env.documents, env.parts, env.junctions, env.cache, logger)
	env.deletion = NewEquipmentDeletionService(tx, env.equipments, env.groups, env.documents, env.parts,
		env.interventions, env.history, env.junctions, env.files, env.cache, logger)
	env.resources = NewGroupResourceService(env.equipments, env.documents, env.parts, env.junctions, env.cache, logger)
	env.equipment = NewEquipmentService(tx, env.equipments, env.history, env.junctions, env.membership, env.files, env.cache, logger)
	return env
}

func strPtr(s string) *string { return &s }

func (env *testEnv) addEquipment(name string, description *string) uint64 {
	id, _ := env.equipments.Create(context.Background(), nil, entities.Equipment{
		Name: name, Status: "operational", HealthPercentage: 100, Description: description,
	})
	return id
}

func (env *testEnv) addGroup(name string, description *string) uint64 {
	id, _ := env.groups.Create(context.Background(), nil, entities.EquipmentGroup{Name: name, Description: description})
	return id
}

func (env *testEnv) addDocument(title string) uint64 {
	id, _ := env.documents.fakeTable.Create(context.Background(), nil, entities.Document{Title: title})
	return id
}

func (env *testEnv) addPart(name string) uint64 {
	id, _ := env.parts.fakeTable.Create(context.Background(), nil, entities.Part{Name: name, Quantity: 1})
	return id
}

func (env *testEnv) link(j *fakeJunction, memberID, groupID uint64) {
	j.links[[2]uint64{memberID, groupID}] = struct{}{}
}
